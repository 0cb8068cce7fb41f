package oracles

type OpenAIError struct {
	Err        error
	Model      string
	StatusCode int
}

var _ error = OpenAIError{}

func (o OpenAIError) Error() string {
	return o.Model + ": " + o.Err.Error()
}

func (o OpenAIError) Unwrap() error {
	return o.Err
}
