package dataset

const (
	legacyTargetName = "MDEV"
	targetName       = "MEDV"
)

// ColumnNameFixer renames the legacy target column MDEV to MEDV. It is
// stateless; Fit only exists so it can sit in front of a pipeline.
type ColumnNameFixer struct{}

// Fit learns nothing.
func (c *ColumnNameFixer) Fit(_ *Frame) *ColumnNameFixer { return c }

// Transform returns a copy with MDEV renamed. Frames that already carry
// MEDV, or lack MDEV, come back unchanged.
func (c *ColumnNameFixer) Transform(f *Frame) *Frame {
	out := f.Clone()
	if out.Has(targetName) {
		return out
	}
	if j := out.Index(legacyTargetName); j >= 0 {
		out.Columns[j] = targetName
	}
	return out
}
