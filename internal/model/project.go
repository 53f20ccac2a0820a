package model

import "time"

// Project categories.  The same set doubles as the custom request project
// type, so both tables share one validator.
const (
	CategoryML        = "ml"
	CategoryWeb       = "web"
	CategoryMobile    = "mobile"
	CategoryDesktop   = "desktop"
	CategoryFullstack = "fullstack"
	CategoryAI        = "ai"
	CategoryOther     = "other"
)

// Project lifecycle states.
const (
	ProjectStatusDraft    = "draft"
	ProjectStatusActive   = "active"
	ProjectStatusSoldOut  = "sold_out"
	ProjectStatusArchived = "archived"
)

// ValidCategory reports whether s is a known project category / request type.
func ValidCategory(s string) bool {
	switch s {
	case CategoryML, CategoryWeb, CategoryMobile, CategoryDesktop, CategoryFullstack, CategoryAI, CategoryOther:
		return true
	}
	return false
}

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusActive, ProjectStatusSoldOut, ProjectStatusArchived:
		return true
	}
	return false
}

// Project is a sellable software project listed on the marketplace.  All
// money values are integer paise.  Images, Tags and the other slice fields
// are persisted as comma-separated text columns.  SellerID is immutable after
// creation and gates every mutation; it becomes nil only when the seller
// account is deleted (FK SET NULL).
//
// Fields:
//  Views, Downloads, Sales – counters; Views bumps on read, Downloads on the
//  download endpoint, Sales only on a verified purchase transaction.
type Project struct {
	ID               uint64    `json:"id"`
	SellerID         *uint64   `json:"seller_id,omitempty"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	PricePaise       int64     `json:"price_paise"`
	Image            *string   `json:"image,omitempty"`
	Images           []string  `json:"images,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	Features         *string   `json:"features,omitempty"`
	TechStack        *string   `json:"tech_stack,omitempty"`
	DemoURL          *string   `json:"demo_url,omitempty"`
	DocumentationURL *string   `json:"documentation_url,omitempty"`
	Views            int       `json:"views"`
	Downloads        int       `json:"downloads"`
	Sales            int       `json:"sales"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
