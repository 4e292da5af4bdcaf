package dynamo

// DynamoDB attribute names used in keys, conditions and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	attrAccountID          = "account_id"
	attrEmail              = "email"
	attrMobile             = "mobile"
	attrName               = "name"
	attrKey                = "key"
	attrCode               = "code"
	attrHasProfile         = "has_profile"
	attrPinHash            = "pin_hash"
	attrUpdatedAt          = "updated_at"
	attrServiceNameKey     = "service_name_lc"
	attrServiceCategoryKey = "service_category_lc"
	attrExpiresAt          = "expires_at"
)

// GSI names.
const (
	indexEmail       = "email-index"
	indexMobile      = "mobile-index"
	indexServiceName = "service_name_lc-index"
)
