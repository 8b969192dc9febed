package pipeline

// Regressor is a model family the AutoML search can select.
type Regressor interface {
	Predictor
	Params() map[string]any
}

// FeatureImportancer is implemented by models that expose per-feature importances.
type FeatureImportancer interface {
	FeatureImportances() []float64
}

// LinearModel is implemented by models whose prediction is intercept + coef·x.
type LinearModel interface {
	Coefficients() []float64
	InterceptTerm() float64
}
