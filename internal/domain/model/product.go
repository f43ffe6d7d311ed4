package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusRejected ProductStatus = "rejected"
)

type Category string

const (
	CategorySofa        Category = "Sofa"
	CategoryChair       Category = "Chair"
	CategoryTVStand     Category = "TVStand"
	CategoryBed         Category = "Bed"
	CategoryWardrobe    Category = "Wardrobe"
	CategoryDesks       Category = "Desks"
	CategoryDiningChair Category = "DiningChair"
	CategoryCabinet     Category = "Cabinet"
	CategoryDiningTable Category = "DiningTable"
)

// 賣家上架的商品 由審核流程控制status
// 送審後賣家不能再修改 只有審核流程會改status
type Product struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Material    string          `json:"material"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	Image       string          `json:"image"`
	GlbURI      string          `json:"glb_uri"`
	PrefabKey   string          `json:"prefab_key"`
	UploaderID  string          `json:"uploader_id"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CategoryListing 審核通過後寫入分類view的反正規化資料
// 只在審核通過時建立一次 不會單獨修改
type CategoryListing struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image"`
	GlbURI      string          `json:"glb_uri"`
	PrefabKey   string          `json:"prefab_key"`
	Status      ProductStatus   `json:"status"`
}
