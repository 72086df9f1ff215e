package sqlgen

// Preflight scans for the Initializer stop character. Referents are joined
// with ';' in the export, so a ';' inside a reference term code or a fully
// specified English name would corrupt the delimited columns.

// StopCharacterTermScan finds concept reference terms containing ';'.
const StopCharacterTermScan = `SELECT crt.concept_reference_term_id, crs.name, crt.code ` +
	`FROM concept_reference_term crt ` +
	`JOIN concept_reference_source crs ON crt.concept_source_id = crs.concept_source_id ` +
	`WHERE crt.code LIKE '%;%';`

// StopCharacterNameScan finds fully specified English concept names
// containing ';'.
const StopCharacterNameScan = `SELECT concept_id, name ` +
	`FROM concept_name ` +
	`WHERE locale = 'en' ` +
	`AND concept_name_type = 'FULLY_SPECIFIED' ` +
	`AND voided = 0 ` +
	`AND name LIKE '%;%';`
