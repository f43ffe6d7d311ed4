package arlink

import (
	"net/url"
	"testing"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func TestLaunchURL(t *testing.T) {
	link, err := LaunchURL(model.CategorySofa, "sofa_oak_01")
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, "arfurniture", parsed.Scheme)
	require.Equal(t, "start", parsed.Host)
	require.Equal(t, "Sofa", parsed.Query().Get("category"))
	require.Equal(t, "sofa_oak_01", parsed.Query().Get("prefabKey"))
}

func TestLaunchURLRequiresPrefabKey(t *testing.T) {
	_, err := LaunchURL(model.CategorySofa, "")
	require.ErrorIs(t, err, ErrMissingPrefabKey)

	_, err = LaunchURLForProduct(nil)
	require.ErrorIs(t, err, ErrMissingPrefabKey)
}

func TestLaunchURLForProduct(t *testing.T) {
	link, err := LaunchURLForProduct(&model.Product{
		Category:  model.CategoryBed,
		PrefabKey: "bed_pine_02",
	})
	require.NoError(t, err)
	require.Contains(t, link, "prefabKey=bed_pine_02")
	require.Contains(t, link, "category=Bed")
}
