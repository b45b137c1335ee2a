package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	SKU          string  `json:"sku"           validate:"required,min=2,max=64"`
	Name         string  `json:"name"          validate:"required,min=2,max=120"`
	Category     string  `json:"category"      validate:"required"`
	CurrentStock int     `json:"current_stock" validate:"min=0"`
	MinStock     int     `json:"min_stock"     validate:"min=0"`
	SupplierID   *string `json:"supplier_id"   validate:"omitempty,uuid"`
}

type UpdateProductRequest struct {
	Name         *string `json:"name"          validate:"omitempty,min=2,max=120"`
	Category     *string `json:"category"`
	CurrentStock *int    `json:"current_stock" validate:"omitempty,min=0"`
	MinStock     *int    `json:"min_stock"     validate:"omitempty,min=0"`
	SupplierID   *string `json:"supplier_id"   validate:"omitempty,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	SKU        string `form:"sku"`
	Name       string `form:"name"`
	Category   string `form:"category"`
	SupplierID string `form:"supplier_id"`
	Active     string `form:"active"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID           string  `json:"id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	CurrentStock int     `json:"current_stock"`
	MinStock     int     `json:"min_stock"`
	SupplierID   *string `json:"supplier_id"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"created_at"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
