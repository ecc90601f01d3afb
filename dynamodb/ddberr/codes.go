package ddberr

const (
	SchemaInvalidKeyConfiguration = "schema.invalidKeyConfiguration"
	SchemaInvalidAttributeName    = "schema.invalidAttributeName"
	SchemaDuplicateAttributeName  = "schema.duplicateAttributeName"
	SchemaDuplicateSavedAs        = "schema.duplicateSavedAs"
	SchemaInvalidSavedAs          = "schema.invalidSavedAs"
	SchemaMissingElements         = "schema.missingElements"
	SchemaInvalidElements         = "schema.invalidElements"
	SchemaInvalidRecordKeys       = "schema.invalidRecordKeys"
	SchemaInvalidEnum             = "schema.invalidEnum"
	SchemaInvalidDefault          = "schema.invalidDefault"
	SchemaInvalidTransformer      = "schema.invalidTransformer"
	SchemaInvalidRequired         = "schema.invalidRequired"
	SchemaInvalidKind             = "schema.invalidKind"
)

const (
	ParsingMissingAttribute      = "parsing.missingAttribute"
	ParsingInvalidAttributeInput = "parsing.invalidAttributeInput"
	ParsingUnknownAttribute      = "parsing.unknownAttribute"
	ParsingCustomValidation      = "parsing.customValidation"
	ParsingDuplicateSetElement   = "parsing.duplicateSetElement"
	ParsingInvalidItem           = "parsing.invalidItem"
)

const (
	FormattingMissingAttribute = "formatting.missingAttribute"
	FormattingInvalidAttribute = "formatting.invalidAttribute"
	FormattingInvalidItem      = "formatting.invalidItem"
)

const (
	OptionsInvalidCapacity     = "options.invalidCapacityOption"
	OptionsInvalidMetrics      = "options.invalidMetricsOption"
	OptionsInvalidReturnValues = "options.invalidReturnValuesOption"
	OptionsInvalidConsistent   = "options.invalidConsistentOption"
	OptionsInvalidIndex        = "options.invalidIndexOption"
	OptionsInvalidSelect       = "options.invalidSelectOption"
	OptionsInvalidLimit        = "options.invalidLimitOption"
	OptionsInvalidMaxPages     = "options.invalidMaxPagesOption"
	OptionsInvalidTableName    = "options.invalidTableNameOption"
	OptionsInvalidAttributes   = "options.invalidAttributesOption"
	OptionsInvalidCondition    = "options.invalidConditionOption"

	ScanInvalidSegment    = "scanCommand.invalidSegmentOption"
	QueryInvalidPartition = "queryCommand.invalidPartition"
	QueryInvalidRange     = "queryCommand.invalidRange"
	QueryInvalidIndex     = "queryCommand.invalidIndex"
)

const (
	EntityReservedAttributeName = "entity.reservedAttributeName"
	EntityInvalidSchema         = "entity.invalidSchema"
	EntityUnknownEntity         = "entity.unknownEntity"
)
