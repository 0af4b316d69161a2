package model

// Doctor is read-only reference data from the doctors table.
type Doctor struct {
	Base
	Name         string   `json:"name" db:"name" validate:"required"`
	Specialty    string   `json:"specialty" db:"specialty" validate:"required"`
	Experience   string   `json:"experience" db:"experience"`
	Education    string   `json:"education" db:"education"`
	Languages    []string `json:"languages" db:"languages"`
	Bio          string   `json:"bio" db:"bio"`
	ImageURL     string   `json:"image_url" db:"image_url"`
	Rating       float64  `json:"rating" db:"rating"`
	ReviewsCount int      `json:"reviews_count" db:"reviews_count"`
}

// Specialty describes one entry of the specialties screen.
type Specialty struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Services    []string `json:"services"`
	ImageURL    string   `json:"image_url"`
}
