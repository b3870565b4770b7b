package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// MonthBucket is one "YYYY-MM" slot of a zero-filled monthly series.
type MonthBucket struct {
	Month string `json:"month"`
	Total Money  `json:"total"`
}

// Icon returns the emoji associated with a category name, defaulting to
// a generic money mark for unknown categories.
func Icon(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return "💵"
}

var categoryIcons = map[string]string{
	"Alimentación": "🍔",
	"Transporte":   "🚗",
	"Salud":        "🩺",
	"Educación":    "📚",
	"Hogar":        "🏠",
	"Servicios":    "💡",
	"Comunicación": "📱",
	"Ropa":         "👗",
	"Mascotas":     "🐶",
	"Viajes":       "✈️",
	"Regalos":      "🎁",
	"Impuestos":    "🧾",
	"Ahorro":       "💰",
	"Trabajo":      "💼",
	"Ocio":         "🎉",
	"Otros":        "🛒",
}
