package catalog

// Sample is a piece of traditional wear offered as a ready-made garment image.
type Sample struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}
