package ui

// icons is the catalog that timer icon ids index into.
var icons = []string{
	"🐱", "🐈", "🐾", "🍅", "📚", "💻",
	"🎧", "🏃", "🧘", "✏️", "🎨", "☕",
}

// IconCount is the size of the built-in icon catalog.
func IconCount() int {
	return len(icons)
}

// Icon returns the glyph for id, or a bullet when id is outside the
// catalog.
func Icon(id int) string {
	if id < 0 || id >= len(icons) {
		return "•"
	}

	return icons[id]
}
