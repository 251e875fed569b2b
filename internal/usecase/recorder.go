package usecase

// Outcome labels reported to a MetricsRecorder
const (
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
	OutcomeInvalid    = "invalid"
	OutcomeSuperseded = "superseded"
)

// MetricsRecorder receives outcome counts from the use cases
type MetricsRecorder interface {
	ObserveCacheLookup(hit bool)
	ObserveEstimate(outcome string)
	ObserveRecipeGeneration(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCacheLookup(bool) {}

func (nopRecorder) ObserveEstimate(string) {}

func (nopRecorder) ObserveRecipeGeneration(string) {}
