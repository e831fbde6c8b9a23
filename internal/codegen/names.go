package codegen

import "github.com/conduit-lang/crudkit/internal/schema"

// names holds the identifiers generated for one resource.
type names struct {
	Type            string
	Field           string
	Fields          string
	New             string
	Patch           string
	Put             string
	NewPut          string
	FilterSpec      string
	ParseFilterSpec string
	Partial         string
	Permissions     string
	AllowAll        string
	Resource        string
	NewResource     string

	nullable     string
	scan         string
	scanNullable string
	newPartial   string
	parseID      string
}

func namesFor(res *schema.Resource) names {
	t := res.Name
	lower := schema.LowerFirst(t)
	return names{
		Type:            t,
		Field:           t + "Field",
		Fields:          t + "Fields",
		New:             "New" + t,
		Patch:           "Patch" + t,
		Put:             "Put" + t,
		NewPut:          "NewPut" + t,
		FilterSpec:      t + "FilterSpec",
		ParseFilterSpec: "Parse" + t + "FilterSpec",
		Partial:         t + "Partial",
		Permissions:     t + "Permissions",
		AllowAll:        t + "AllowAll",
		Resource:        t + "Resource",
		NewResource:     "New" + t + "Resource",

		nullable:     lower + "Nullable",
		scan:         "scan" + t,
		scanNullable: "scan" + t + "Nullable",
		newPartial:   "new" + t + "Partial",
		parseID:      "parse" + t + "ID",
	}
}

// fieldConst is the enum constant naming f.
func (n names) fieldConst(f *schema.Field) string {
	return n.Field + f.Name
}

// createType is the create body type used by the permissions capability.
func (n names) createType(res *schema.Resource) string {
	if res.Options.Create {
		return n.New
	}
	return "struct{}"
}

// putType is the replacement body type used by the permissions capability.
func (n names) putType(res *schema.Resource) string {
	if res.Options.Update {
		return n.Put
	}
	return "struct{}"
}
