package annotation

// Unmanaged marks a property whose state is backed by user-written code.
type Unmanaged struct{}

// Hidden excludes a property from encoded output.
type Hidden struct{}

// Rename sets the key a property is encoded under.
type Rename struct {
	Name string
}

// Description documents a property for diagnostic output.
type Description struct {
	Text string
}

func builtinDefinitions() []Definition {
	return []Definition{
		{
			Name:        "Unmanaged",
			Kind:        KindFor[Unmanaged](),
			Description: "Property state is backed by user-written code",
			Decode: func(Arguments) (Annotation, error) {
				return Unmanaged{}, nil
			},
			Examples: []string{"@Unmanaged"},
		},
		{
			Name:        "Hidden",
			Kind:        KindFor[Hidden](),
			Description: "Exclude the property from encoded output",
			Decode: func(Arguments) (Annotation, error) {
				return Hidden{}, nil
			},
			Examples: []string{"@Hidden"},
		},
		{
			Name:        "Rename",
			Kind:        KindFor[Rename](),
			Description: "Encode the property under a different key",
			Parameters: map[string]ParameterSpec{
				"name": {
					Type:        StringType,
					Required:    true,
					Description: "Key used in encoded output",
					Validator:   nonEmptyString,
				},
			},
			Decode: func(args Arguments) (Annotation, error) {
				return Rename{Name: args.GetString("name")}, nil
			},
			Examples: []string{`@Rename(name="display_name")`},
		},
		{
			Name:        "Description",
			Kind:        KindFor[Description](),
			Description: "Human readable documentation for the property",
			Parameters: map[string]ParameterSpec{
				"text": {
					Type:        StringType,
					Required:    true,
					Description: "Documentation text",
				},
			},
			Decode: func(args Arguments) (Annotation, error) {
				return Description{Text: args.GetString("text")}, nil
			},
			Examples: []string{`@Description(text="Number of items")`},
		},
	}
}
