package asset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category identifies the semantic class of a game asset, derived from its
// file extension.
type Category int

const (
	CategoryOther Category = iota
	CategoryTexture
	CategoryAudio
	CategoryModel
	CategoryScript
)

func (c Category) String() string {
	switch c {
	case CategoryTexture:
		return "texture"
	case CategoryAudio:
		return "audio"
	case CategoryModel:
		return "model"
	case CategoryScript:
		return "script"
	default:
		return "other"
	}
}

// MarshalText encodes the category as its lowercase name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a lowercase category name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory maps a category name back to its Category value.
func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(name) {
	case "texture":
		return CategoryTexture, nil
	case "audio":
		return CategoryAudio, nil
	case "model":
		return CategoryModel, nil
	case "script":
		return CategoryScript, nil
	case "other":
		return CategoryOther, nil
	default:
		return CategoryOther, fmt.Errorf("unknown asset category %q", name)
	}
}

// Categories lists every category in reporting order.
func Categories() []Category {
	return []Category{CategoryTexture, CategoryAudio, CategoryModel, CategoryScript, CategoryOther}
}

var extensionSets = map[Category][]string{
	CategoryTexture: {".png", ".jpg", ".jpeg", ".tga", ".bmp", ".gif", ".tif", ".tiff", ".dds", ".ktx", ".psd"},
	CategoryAudio:   {".mp3", ".wav", ".ogg", ".flac", ".aac", ".wma", ".m4a", ".aiff"},
	CategoryModel:   {".fbx", ".obj", ".3ds", ".blend", ".dae", ".gltf", ".glb", ".stl", ".ply"},
	CategoryScript:  {".txt", ".json", ".xml", ".lua", ".py", ".js", ".cs", ".cpp", ".c", ".h"},
}

var categoryByExtension = buildExtensionIndex()

func buildExtensionIndex() map[string]Category {
	index := make(map[string]Category)
	for category, extensions := range extensionSets {
		for _, ext := range extensions {
			index[ext] = category
		}
	}
	return index
}

// Classify determines the category of a path from its extension. The lookup
// is case-insensitive and depends on nothing but the path string; unmatched
// or missing extensions classify as CategoryOther.
func Classify(path string) Category {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return CategoryOther
	}
	if category, ok := categoryByExtension[ext]; ok {
		return category
	}
	return CategoryOther
}
