package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loreweave/loreweave/internal/db"
	"github.com/loreweave/loreweave/internal/logging"
	"github.com/loreweave/loreweave/internal/models"
)

func init() {
	rootCmd.AddCommand(objectCmd)
	objectCmd.AddCommand(objectAddCmd)
	objectCmd.AddCommand(objectListCmd)
	objectCmd.AddCommand(objectShowCmd)
	objectCmd.AddCommand(objectRemoveCmd)

	objectAddCmd.Flags().String("id", "", "object ID (defaults to a slug of the name)")
	objectAddCmd.Flags().String("kind", string(models.ObjectKindCustom), "object kind (person, place, project, custom)")
	objectAddCmd.Flags().StringArray("attr", nil, "base attribute as id:type=value (repeatable)")
	objectAddCmd.Flags().StringArray("enum-values", nil, "allowed choices for an enum attribute as id=a,b,c (repeatable)")

	objectShowCmd.Flags().Float64("at", 0, "resolve attribute values at this story time")
}

var objectCmd = &cobra.Command{
	Use:   "object",
	Short: "Manage world objects",
	Long:  "Create, inspect, and remove world objects and their base attributes.",
}

var objectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a world object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, _ := cmd.Flags().GetString("id")
		kind, _ := cmd.Flags().GetString("kind")
		attrSpecs, _ := cmd.Flags().GetStringArray("attr")
		enumSpecs, _ := cmd.Flags().GetStringArray("enum-values")

		name := strings.TrimSpace(args[0])
		if id == "" {
			id = slugify(name)
		}

		enums, err := parseEnumSpecs(enumSpecs)
		if err != nil {
			return err
		}

		attributes := make([]models.Attribute, 0, len(attrSpecs))
		for _, spec := range attrSpecs {
			attr, err := parseAttributeSpec(spec, enums)
			if err != nil {
				return err
			}
			attributes = append(attributes, attr)
		}

		obj := &models.Object{
			ID:         id,
			Name:       name,
			Kind:       models.ObjectKind(kind),
			Attributes: attributes,
		}

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.NewObjectRepository(database).Create(ctx, obj); err != nil {
			return err
		}

		objectLogger := logging.WithObject(obj.ID)
		objectLogger.Info().Str("name", obj.Name).Msg("object created")
		fmt.Printf("Created object %s (%s)\n", obj.ID, obj.Kind)
		return nil
	},
}

var objectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List world objects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		objects, err := db.NewObjectRepository(database).List(ctx)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(objects))
		for _, obj := range objects {
			rows = append(rows, []string{
				obj.ID,
				obj.Name,
				string(obj.Kind),
				fmt.Sprintf("%d", len(obj.Attributes)),
			})
		}
		return writeTable(os.Stdout, []string{"ID", "NAME", "KIND", "ATTRS"}, rows)
	},
}

var objectShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an object and its attribute values",
	Long: `Show an object's attributes. Without --at the base values are printed;
with --at the values are resolved as of that story time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		obj, err := db.NewObjectRepository(database).Get(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s  (%s, kind=%s)\n\n", obj.Name, obj.ID, obj.Kind)

		if cmd.Flags().Changed("at") {
			at, _ := cmd.Flags().GetFloat64("at")
			return printResolvedAttributes(ctx, database, obj, at)
		}

		rows := make([][]string, 0, len(obj.Attributes))
		for _, attr := range obj.Attributes {
			rows = append(rows, []string{attr.ID, attr.Name, string(attr.Type), attr.Value.String()})
		}
		return writeTable(os.Stdout, []string{"ATTRIBUTE", "NAME", "TYPE", "BASE VALUE"}, rows)
	},
}

var objectRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove an object and its change events",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.NewObjectRepository(database).Purge(ctx, args[0]); err != nil {
			return err
		}

		fmt.Printf("Removed object %s\n", args[0])
		return nil
	},
}

// parseAttributeSpec parses "id:type=value" into an Attribute. Enum
// attributes take their allowed choices from the enums map.
func parseAttributeSpec(spec string, enums map[string][]string) (models.Attribute, error) {
	head, rawValue, ok := strings.Cut(spec, "=")
	if !ok {
		return models.Attribute{}, fmt.Errorf("invalid attribute %q: expected id:type=value", spec)
	}
	id, rawType, ok := strings.Cut(head, ":")
	if !ok {
		return models.Attribute{}, fmt.Errorf("invalid attribute %q: expected id:type=value", spec)
	}

	id = strings.TrimSpace(id)
	valueType := models.ValueType(strings.TrimSpace(rawType))
	if id == "" {
		return models.Attribute{}, errors.New("attribute ID must not be empty")
	}
	if !valueType.Valid() {
		return models.Attribute{}, fmt.Errorf("unknown attribute type %q", rawType)
	}

	value, err := models.ParseValue(valueType, rawValue)
	if err != nil {
		return models.Attribute{}, fmt.Errorf("invalid value for attribute %s: %w", id, err)
	}

	attr := models.Attribute{
		ID:         id,
		Name:       id,
		Type:       valueType,
		Value:      value,
		EnumValues: enums[id],
	}
	if err := attr.Validate(); err != nil {
		return models.Attribute{}, err
	}
	if err := attr.CheckValue(value); err != nil {
		return models.Attribute{}, fmt.Errorf("invalid value for attribute %s: %w", id, err)
	}
	return attr, nil
}

// parseEnumSpecs parses repeated "id=a,b,c" flags into a lookup of
// allowed enum choices per attribute ID.
func parseEnumSpecs(specs []string) (map[string][]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	enums := make(map[string][]string, len(specs))
	for _, spec := range specs {
		id, rawChoices, ok := strings.Cut(spec, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid enum values %q: expected id=a,b,c", spec)
		}
		var choices []string
		for _, choice := range strings.Split(rawChoices, ",") {
			if choice = strings.TrimSpace(choice); choice != "" {
				choices = append(choices, choice)
			}
		}
		if len(choices) == 0 {
			return nil, fmt.Errorf("invalid enum values %q: no choices given", spec)
		}
		enums[strings.TrimSpace(id)] = choices
	}
	return enums, nil
}

// slugify lowers a display name into a stable identifier.
func slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
