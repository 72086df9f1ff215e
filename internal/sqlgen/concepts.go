// Package sqlgen composes the SQL statements the exporters run against the
// OpenMRS database. Statements are rendered from text/template; none of them
// may contain double quotes, because they are handed to the mysql CLI inside
// a double-quoted -e argument.
package sqlgen

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/PIH/iniz-exporters/internal/record"
)

// Iniz column headers for the per-locale name columns.
const (
	NameTypeFull  = "full"
	NameTypeShort = "short"
)

// ConceptQuery describes one concepts export statement.
type ConceptQuery struct {
	// Locales to extract names for, e.g. ["en", "es"]. The en fully
	// specified name is always a required (inner) join; everything else
	// is a left join.
	Locales []string
	// NameTypes holds "full" and/or "short".
	NameTypes []string
	// Key is the column referents resolve against: the en fully specified
	// name (default) or the uuid column. Members and Answers are emitted
	// in the same value space, so every referent matches a key.
	Key string
	// Where is an optional extra predicate ANDed onto c.retired = 0.
	Where string
	// Limit caps the row count when > 0. Debugging aid only.
	Limit int
}

// MemberExpr is the expression the Members column concatenates.
func (q ConceptQuery) MemberExpr() string {
	if q.Key == record.KeyUUID {
		return "c_set_c.uuid"
	}
	return "set_mem_name.name"
}

// AnswerExpr is the expression the Answers column concatenates.
func (q ConceptQuery) AnswerExpr() string {
	if q.Key == record.KeyUUID {
		return "c_ans_c.uuid"
	}
	return "ans_name.name"
}

// conceptsTemplate mirrors the Initializer concepts domain: one row per
// concept, with set members and answers group-concatenated into the two
// semicolon-delimited referent columns.
const conceptsTemplate = `-- concepts export, locales: {{ .Locales | join "," }}
SET SESSION group_concat_max_len = 1000000;
SELECT c.uuid, cd_en.description 'Description:en', cl.name 'Data class', dt.name 'Data type',
GROUP_CONCAT(DISTINCT source.name, ':', crt.code SEPARATOR ';') 'Same as concept mappings'
{{- range $l := .Locales }}{{ range $t := $.NameTypes }},
cn_{{ $l }}_{{ $t }}.name '{{ inizName $t }}:{{ $l }}'
{{- end }}{{ end }},
c_num.hi_absolute 'Absolute high',
c_num.hi_critical 'Critical high',
c_num.hi_normal 'Normal high',
c_num.low_absolute 'Absolue low',
c_num.low_critical 'Critical low',
c_num.low_normal 'Normal low',
c_num.units 'Units',
c_num.allow_decimal 'Allow decimals',
c_num.display_precision 'Display precision',
c_cx.handler 'Complex data handler',
GROUP_CONCAT(DISTINCT {{ .MemberExpr }} SEPARATOR ';') 'Members',
GROUP_CONCAT(DISTINCT {{ .AnswerExpr }} SEPARATOR ';') 'Answers'
FROM concept c
JOIN concept_class cl ON c.class_id = cl.concept_class_id
JOIN concept_datatype dt ON c.datatype_id = dt.concept_datatype_id
LEFT JOIN concept_description cd_en ON c.concept_id = cd_en.concept_id AND cd_en.locale = 'en'
LEFT JOIN concept_reference_map crm ON c.concept_id = crm.concept_id
  LEFT JOIN concept_reference_term crt ON crm.concept_reference_term_id = crt.concept_reference_term_id AND crt.retired = 0
  LEFT JOIN concept_map_type map_type ON crm.concept_map_type_id = map_type.concept_map_type_id AND map_type.name = 'SAME-AS'
  LEFT JOIN concept_reference_source source ON crt.concept_source_id = source.concept_source_id
{{- range $l := .Locales }}{{ range $t := $.NameTypes }}
{{ joinKind $l $t }}JOIN concept_name cn_{{ $l }}_{{ $t }} ON c.concept_id = cn_{{ $l }}_{{ $t }}.concept_id AND cn_{{ $l }}_{{ $t }}.locale = '{{ $l }}' AND cn_{{ $l }}_{{ $t }}.concept_name_type = '{{ sqlNameType $t }}' AND cn_{{ $l }}_{{ $t }}.voided = 0
{{- end }}{{ end }}
LEFT JOIN concept_numeric c_num ON c.concept_id = c_num.concept_id
LEFT JOIN concept_complex c_cx ON c.concept_id = c_cx.concept_id
LEFT JOIN concept_set c_set ON c.concept_id = c_set.concept_set
  LEFT JOIN concept c_set_c ON c_set.concept_id = c_set_c.concept_id AND c_set_c.retired = 0
  LEFT JOIN concept_name set_mem_name ON c_set_c.concept_id = set_mem_name.concept_id AND set_mem_name.locale = 'en' AND set_mem_name.concept_name_type = 'FULLY_SPECIFIED' AND set_mem_name.voided = 0
LEFT JOIN concept_answer c_ans ON c.concept_id = c_ans.concept_id
  LEFT JOIN concept c_ans_c ON c_ans.answer_concept = c_ans_c.concept_id AND c_ans_c.retired = 0
  LEFT JOIN concept_name ans_name ON c_ans_c.concept_id = ans_name.concept_id AND ans_name.locale = 'en' AND ans_name.concept_name_type = 'FULLY_SPECIFIED' AND ans_name.voided = 0
WHERE c.retired = 0{{ if .Where }} AND {{ .Where }}{{ end }}
GROUP BY c.concept_id
ORDER BY c.is_set{{ if .Limit }} LIMIT {{ .Limit }}{{ end }};`

// funcMap extends sprig's text functions with the OpenMRS naming helpers the
// templates need.
func funcMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["inizName"] = func(nameType string) (string, error) {
		switch nameType {
		case NameTypeFull:
			return "Fully specified name", nil
		case NameTypeShort:
			return "Short name", nil
		}
		return "", fmt.Errorf("unknown name type %q", nameType)
	}
	funcs["sqlNameType"] = func(nameType string) (string, error) {
		switch nameType {
		case NameTypeFull:
			return "FULLY_SPECIFIED", nil
		case NameTypeShort:
			return "SHORT", nil
		}
		return "", fmt.Errorf("unknown name type %q", nameType)
	}
	// The en fully specified name doubles as the record key, so that one
	// join is required; every other name column may be absent.
	funcs["joinKind"] = func(locale, nameType string) string {
		if locale == "en" && nameType == NameTypeFull {
			return ""
		}
		return "LEFT "
	}
	return funcs
}

var conceptsTmpl = template.Must(
	template.New("concepts").Funcs(funcMap()).Parse(conceptsTemplate))

// Concepts renders the concepts export statement.
func Concepts(q ConceptQuery) (string, error) {
	if len(q.Locales) == 0 {
		return "", fmt.Errorf("at least one locale is required")
	}
	if len(q.NameTypes) == 0 {
		return "", fmt.Errorf("at least one name type is required")
	}
	switch q.Key {
	case "", record.KeyFullySpecifiedNameEN, record.KeyUUID:
	default:
		return "", fmt.Errorf("unsupported key column %q", q.Key)
	}
	var sb strings.Builder
	if err := conceptsTmpl.Execute(&sb, q); err != nil {
		return "", fmt.Errorf("rendering concepts query: %w", err)
	}
	return validate(sb.String())
}

// validate enforces the no-double-quote rule shared by every statement.
func validate(sql string) (string, error) {
	if strings.Contains(sql, `"`) {
		return "", fmt.Errorf("generated SQL contains a double quote, which the mysql -e wrapper cannot pass through")
	}
	return sql, nil
}
