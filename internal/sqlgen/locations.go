package sqlgen

// Locations is the locations export statement: one row per location with its
// parent reference and comma-concatenated tags and attributes, which the
// location exporter spreads into per-tag and per-attribute columns.
const Locations = `SELECT l.uuid AS 'UUID', ` +
	`l.retired AS 'Void/Retire', ` +
	`l.name AS 'Name', ` +
	`l.description AS 'Description', ` +
	`p.name AS 'Parent', ` +
	`GROUP_CONCAT(DISTINCT lt.name) AS 'Tags', ` +
	`GROUP_CONCAT(DISTINCT CONCAT(lat.name, ':', la.value_reference)) AS 'Attributes' ` +
	`FROM location l ` +
	`LEFT JOIN location p ON l.parent_location = p.location_id ` +
	`LEFT JOIN location_tag_map ltm ON l.location_id = ltm.location_id ` +
	`LEFT JOIN location_tag lt ON ltm.location_tag_id = lt.location_tag_id ` +
	`LEFT JOIN location_attribute la ON l.location_id = la.location_id ` +
	`LEFT JOIN location_attribute_type lat ON la.attribute_type_id = lat.location_attribute_type_id ` +
	`GROUP BY l.location_id ` +
	`ORDER BY l.location_id ASC;`
