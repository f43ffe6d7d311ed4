// Package arlink 產生AR檢視器的deep link
// 分類與prefab key帶在query string 由裝置端的AR app接手
package arlink

import (
	"errors"
	"net/url"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
)

const (
	scheme = "arfurniture"
	host   = "start"
)

var ErrMissingPrefabKey = errors.New("prefab key is required")

// LaunchURL arfurniture://start?category=<c>&prefabKey=<k>
func LaunchURL(category model.Category, prefabKey string) (string, error) {
	if prefabKey == "" {
		return "", ErrMissingPrefabKey
	}
	query := url.Values{}
	query.Set("category", string(category))
	query.Set("prefabKey", prefabKey)
	u := url.URL{
		Scheme:   scheme,
		Host:     host,
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

// LaunchURLForProduct 商品沒有prefab key就回ErrMissingPrefabKey
func LaunchURLForProduct(product *model.Product) (string, error) {
	if product == nil {
		return "", ErrMissingPrefabKey
	}
	return LaunchURL(product.Category, product.PrefabKey)
}
