package smartdb

import "testing"

func TestTimeoutIsAlwaysRetryable(t *testing.T) {
	err := NewError("deadline elapsed", 0, KindTimeout, false)
	if !err.Retryable {
		t.Error("Timeout errors must be retryable regardless of caller input")
	}
}

func TestResultBranching(t *testing.T) {
	ok := Success(42)
	if !ok.Ok() || ok.Value() != 42 {
		t.Errorf("unexpected success result: %+v", ok)
	}

	fail := FailureMsg[int]("boom", 7)
	if fail.Ok() {
		t.Error("FailureMsg result should not be Ok")
	}
	if fail.Err().Kind != KindUnknown || fail.Err().Retryable {
		t.Errorf("FailureMsg should default to Unknown/non-retryable, got %+v", fail.Err())
	}

	v, err := fail.Unwrap()
	if err == nil {
		t.Error("Unwrap should surface the error")
	}
	_ = v
}
