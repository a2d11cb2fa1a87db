package analyzer

import "labvista/internal/repair"

// AnalysisSchema declares the two shapes a model emission may take: a full
// analysis document, or a per-page error result. The repair pipeline
// validates against this union.
func AnalysisSchema() *repair.Schema {
	resultObject := &repair.Object{
		Name: "result",
		Fields: []repair.Field{
			{Name: "testName", Required: true, Type: repair.FieldType{Kinds: []repair.Kind{repair.KindString}}},
			{Name: "result", Required: true, Type: repair.FieldType{
				Kinds:    []repair.Kind{repair.KindString, repair.KindNumber},
				Nullable: true,
			}},
			{Name: "unit", Type: repair.FieldType{Kinds: []repair.Kind{repair.KindString}}},
			{Name: "flag", Type: repair.FieldType{
				Kinds: []repair.Kind{repair.KindString},
				Enum:  []string{"high", "low", "normal"},
			}},
		},
	}

	analysis := &repair.Object{
		Name: "analysis",
		Fields: []repair.Field{
			{Name: "patientInfo", Required: true, Type: repair.FieldType{
				Kinds: []repair.Kind{repair.KindObject},
				Object: &repair.Object{
					Name: "patientInfo",
					Fields: []repair.Field{
						{Name: "id", Required: true, Type: repair.FieldType{Kinds: []repair.Kind{repair.KindString}}},
						{Name: "name", Required: true, Type: repair.FieldType{Kinds: []repair.Kind{repair.KindString}}},
						{Name: "age", Type: repair.FieldType{Kinds: []repair.Kind{repair.KindNumber}, Nullable: true}},
						{Name: "gender", Type: repair.FieldType{
							Kinds:    []repair.Kind{repair.KindString},
							Enum:     []string{"male", "female", "other"},
							Nullable: true,
						}},
						{Name: "lastTestDate", Required: true, Type: repair.FieldType{Kinds: []repair.Kind{repair.KindString}}},
					},
				},
			}},
			{Name: "latestResults", Required: true, Type: repair.FieldType{
				Kinds: []repair.Kind{repair.KindArray},
				Elem:  &repair.FieldType{Kinds: []repair.Kind{repair.KindObject}, Object: resultObject},
			}},
			{Name: "testCategories", Required: true, Type: repair.FieldType{
				Kinds: []repair.Kind{repair.KindArray},
				Elem: &repair.FieldType{
					Kinds: []repair.Kind{repair.KindObject},
					Object: &repair.Object{
						Name: "testCategory",
						Fields: []repair.Field{
							{Name: "categoryName", Required: true, Type: repair.FieldType{Kinds: []repair.Kind{repair.KindString}}},
							{Name: "tests", Required: true, Type: repair.FieldType{
								Kinds: []repair.Kind{repair.KindArray},
								Elem:  &repair.FieldType{Kinds: []repair.Kind{repair.KindObject}, Object: resultObject},
							}},
						},
					},
				},
			}},
			{Name: "processing_metadata", Type: repair.FieldType{
				Kinds: []repair.Kind{repair.KindObject},
				Object: &repair.Object{
					Name: "processing_metadata",
					Fields: []repair.Field{
						{Name: "validation_success", Type: repair.FieldType{Kinds: []repair.Kind{repair.KindBool}}},
					},
				},
			}},
		},
	}

	pageError := &repair.Object{
		Name: "page_error",
		Fields: []repair.Field{
			{Name: "error", Required: true, Type: repair.FieldType{Kinds: []repair.Kind{repair.KindString}}},
			{Name: "page_number", Required: true, Type: repair.FieldType{Kinds: []repair.Kind{repair.KindNumber}}},
			{Name: "processing_success", Required: true, Type: repair.FieldType{Kinds: []repair.Kind{repair.KindBool}}},
			{Name: "exception", Type: repair.FieldType{Kinds: []repair.Kind{repair.KindString}}},
		},
	}

	return &repair.Schema{Variants: []*repair.Object{analysis, pageError}}
}
