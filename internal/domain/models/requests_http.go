package models

// DatasetStatsRequest is the query contract for GET /api/dataset/stats.
type DatasetStatsRequest struct {
	Symbol string `query:"symbol" validate:"omitempty,min=1,max=32"`
}

// ValidationReportRequest is the query contract for GET /api/validation/report.
// Folds is a pointer so an explicit folds=false survives defaulting.
type ValidationReportRequest struct {
	Symbol string `query:"symbol" validate:"omitempty,min=1,max=32"`
	Folds  *bool  `query:"folds" default:"true"`
}

// LatestFeaturesRequest is the query contract for GET /api/features/latest.
type LatestFeaturesRequest struct {
	Symbol string `query:"symbol" validate:"omitempty,min=1,max=32"`
	N      int    `query:"n" default:"1" validate:"gte=1,lte=500"`
}
