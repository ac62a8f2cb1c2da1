package result

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/taskmaster/internal/errs"
)

func TestZeroValueIsLoading(t *testing.T) {
	var r Result[int]
	require.True(t, r.IsLoading())
	require.Equal(t, "loading", r.State().String())
	require.NoError(t, r.Err())
}

func TestSuccess(t *testing.T) {
	r := Success("x")
	v, ok := r.Value()
	require.True(t, ok)
	require.Equal(t, "x", v)
	require.Empty(t, r.Message())
	require.Equal(t, errs.KindUnknown, r.Kind())
}

func TestFailure_KeepsKind(t *testing.T) {
	r := Failure[int](errs.Rejected("quota exceeded", "", "Failed to create task"))
	require.True(t, r.IsError())
	require.Equal(t, "quota exceeded", r.Message())
	require.Equal(t, errs.KindRejected, r.Kind())

	_, ok := r.Value()
	require.False(t, ok)
}

func TestFailure_PlainError(t *testing.T) {
	cause := errors.New("boom")
	r := Failure[int](cause)
	require.Equal(t, "boom", r.Message())
	require.Equal(t, errs.KindUnknown, r.Kind())
	require.ErrorIs(t, r.Err(), cause)
}

func TestMatch_CallsExactlyOne(t *testing.T) {
	cases := []struct {
		name string
		r    Result[int]
		want string
	}{
		{"loading", Loading[int](), "L"},
		{"success", Success(7), "S7"},
		{"error", Failure[int](errs.EmptyPayload()), "E" + errs.MsgNoData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			tc.r.Match(
				func() { got += "L" },
				func(v int) { got += "S" + strconv.Itoa(v) },
				func(e *errs.Error) { got += "E" + e.Message },
			)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMap(t *testing.T) {
	r := Map(Success(2), func(v int) string { return strconv.Itoa(v * 2) })
	v, ok := r.Value()
	require.True(t, ok)
	require.Equal(t, "4", v)

	e := Map(Failure[int](errs.Validation("bad")), func(v int) string { return "" })
	require.Equal(t, errs.KindValidation, e.Kind())

	require.True(t, Map(Loading[int](), func(int) int { return 0 }).IsLoading())
}
