package blocks

import (
	"ghostkit/styles"
)

// ButtonSingle is a single button within buttons wrapper block.
var ButtonSingle = &Type{
	Name:     "ghostkit/button-single",
	Styles:   true,
	Callback: buttonStyles,
	Defaults: map[string]any{
		"variant":      "default",
		"text":         "Button",
		"size":         "md",
		"color":        "#0366d6",
		"textColor":    "#ffffff",
		"borderRadius": 2,
		"borderWeight": 0,
		"borderColor":  "#00669b",
	},
	BaseClass: "ghostkit-button",
	Variants:  true,
	Tag: func(attrs *Attributes) string {
		if attrs.Truthy("url") {
			return "a"
		}
		return "span"
	},
	Classes: func(attrs *Attributes) []string {
		if size := attrs.String("size"); size != "" {
			return []string{"ghostkit-button-" + size}
		}
		return nil
	},
}

func buttonStyles(attrs *Attributes) *styles.Description {
	bordered := attrs.Truthy("borderWeight") && attrs.Truthy("borderColor")

	border := styles.Bool(false)
	if bordered {
		border = styles.Str(attrs.String("borderWeight") + "px solid " + attrs.String("borderColor"))
	}
	hoverBorder := styles.Bool(false)
	if bordered && attrs.Truthy("hoverBorderColor") {
		hoverBorder = attrs.Node("hoverBorderColor")
	}

	return styles.New().
		Set("backgroundColor", attrs.Node("color")).
		Set("color", attrs.Node("textColor")).
		Set("borderRadius", attrs.Node("borderRadius")).
		Set("border", border).
		Set("&:hover, &:focus", styles.Map(styles.New().
			Set("backgroundColor", attrs.Node("hoverColor")).
			Set("color", attrs.Node("hoverTextColor")).
			Set("borderColor", hoverBorder)))
}

// IconBox is an icon with content.
var IconBox = &Type{
	Name:   "ghostkit/icon-box",
	Styles: true,
	Callback: func(attrs *Attributes) *styles.Description {
		return styles.New().
			Set(".ghostkit-icon-box-icon", styles.Map(styles.New().
				Set("fontSize", attrs.Node("iconSize")).
				Set("color", attrs.Node("iconColor"))))
	},
	Defaults: map[string]any{
		"variant":      "default",
		"icon":         "fab fa-wordpress-simple",
		"iconPosition": "left",
		"iconSize":     30,
		"iconColor":    "#0366d6",
	},
	BaseClass: "ghostkit-icon-box",
	Variants:  true,
}

// GoogleMaps supports custom styles which are edited directly.
var GoogleMaps = &Type{
	Name:      "ghostkit/google-maps",
	Styles:    true,
	BaseClass: "ghostkit-google-maps",
}

// Builtin returns registry with all block types known out of the box.
func Builtin() *Registry {
	return NewRegistry(ButtonSingle, IconBox, GoogleMaps)
}
