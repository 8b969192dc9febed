package models

import (
	"fmt"
	"math"
	"time"
)

// PredictionRecord is one served prediction in the append-only audit log.
// Feature columns are nullable; a nil pointer means the request omitted it.
type PredictionRecord struct {
	ID              int64     `db:"id" json:"id" gorm:"primaryKey;autoIncrement"`
	PredictionTime  time.Time `db:"prediction_time" json:"prediction_time" gorm:"not null;index"`
	PredictionValue float64   `db:"prediction_value" json:"prediction_value" gorm:"not null"`
	Overridden      bool      `db:"overridden" json:"overridden" gorm:"not null;default:false"`

	CRIM    *float64 `db:"crim" json:"CRIM" gorm:"column:crim"`
	ZN      *float64 `db:"zn" json:"ZN" gorm:"column:zn"`
	INDUS   *float64 `db:"indus" json:"INDUS" gorm:"column:indus"`
	CHAS    *int64   `db:"chas" json:"CHAS" gorm:"column:chas"`
	NOX     *float64 `db:"nox" json:"NOX" gorm:"column:nox"`
	RM      *float64 `db:"rm" json:"RM" gorm:"column:rm"`
	AGE     *float64 `db:"age" json:"AGE" gorm:"column:age"`
	DIS     *float64 `db:"dis" json:"DIS" gorm:"column:dis"`
	RAD     *int64   `db:"rad" json:"RAD" gorm:"column:rad"`
	TAX     *float64 `db:"tax" json:"TAX" gorm:"column:tax"`
	PTRATIO *float64 `db:"ptratio" json:"PTRATIO" gorm:"column:ptratio"`
	B       *float64 `db:"b" json:"B" gorm:"column:b"`
	LSTAT   *float64 `db:"lstat" json:"LSTAT" gorm:"column:lstat"`
}

// TableName pins the gorm table name.
func (PredictionRecord) TableName() string { return "predictions" }

// NewPredictionRecord builds an unsaved record from feature values keyed by
// name. NaN values are stored as NULL; unknown names are ignored. The
// prediction itself must be finite.
func NewPredictionRecord(names []string, values []float64, prediction float64, overridden bool) (*PredictionRecord, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("%w: %d names for %d values", ErrInvalidRecord, len(names), len(values))
	}
	if math.IsNaN(prediction) || math.IsInf(prediction, 0) {
		return nil, fmt.Errorf("%w: non-finite prediction %v", ErrInvalidRecord, prediction)
	}
	r := &PredictionRecord{PredictionValue: prediction, Overridden: overridden}
	for i, name := range names {
		if math.IsNaN(values[i]) {
			continue
		}
		r.set(name, values[i])
	}
	return r, nil
}

func (r *PredictionRecord) set(name string, v float64) {
	f := func() *float64 { x := v; return &x }
	n := func() *int64 { x := int64(math.Round(v)); return &x }
	switch name {
	case "CRIM":
		r.CRIM = f()
	case "ZN":
		r.ZN = f()
	case "INDUS":
		r.INDUS = f()
	case "CHAS":
		r.CHAS = n()
	case "NOX":
		r.NOX = f()
	case "RM":
		r.RM = f()
	case "AGE":
		r.AGE = f()
	case "DIS":
		r.DIS = f()
	case "RAD":
		r.RAD = n()
	case "TAX":
		r.TAX = f()
	case "PTRATIO":
		r.PTRATIO = f()
	case "B":
		r.B = f()
	case "LSTAT":
		r.LSTAT = f()
	}
}

// Features returns the stored feature values keyed by name; NULL columns are absent.
func (r *PredictionRecord) Features() map[string]float64 {
	out := make(map[string]float64, 13)
	put := func(name string, v *float64) {
		if v != nil {
			out[name] = *v
		}
	}
	putInt := func(name string, v *int64) {
		if v != nil {
			out[name] = float64(*v)
		}
	}
	put("CRIM", r.CRIM)
	put("ZN", r.ZN)
	put("INDUS", r.INDUS)
	putInt("CHAS", r.CHAS)
	put("NOX", r.NOX)
	put("RM", r.RM)
	put("AGE", r.AGE)
	put("DIS", r.DIS)
	putInt("RAD", r.RAD)
	put("TAX", r.TAX)
	put("PTRATIO", r.PTRATIO)
	put("B", r.B)
	put("LSTAT", r.LSTAT)
	return out
}

// FeatureArgs returns the feature columns in table order for positional inserts.
func (r *PredictionRecord) FeatureArgs() []any {
	return []any{r.CRIM, r.ZN, r.INDUS, r.CHAS, r.NOX, r.RM, r.AGE, r.DIS, r.RAD, r.TAX, r.PTRATIO, r.B, r.LSTAT}
}

// FeatureColumns lists the feature column names in table order.
var FeatureColumns = []string{"crim", "zn", "indus", "chas", "nox", "rm", "age", "dis", "rad", "tax", "ptratio", "b", "lstat"}
