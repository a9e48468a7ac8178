package contact

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/bangalore-local/internal/catalog"
)

type stubSubmitter struct {
	reply catalog.ContactReply
	err   error
	calls []url.Values
}

func (s *stubSubmitter) SubmitContact(_ context.Context, form url.Values) (catalog.ContactReply, error) {
	s.calls = append(s.calls, form)
	return s.reply, s.err
}

func validValues() url.Values {
	return url.Values{
		"name":    {"Priya"},
		"email":   {"Priya@Example.COM"},
		"message": {"Is the listing free?"},
		"subject": {"Listing"},
	}
}

func TestSubmitBlocksInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(url.Values)
		want   string
	}{
		{name: "missing name", mutate: func(v url.Values) { v.Del("name") }, want: msgRequired},
		{name: "empty email", mutate: func(v url.Values) { v.Set("email", "") }, want: msgRequired},
		{name: "missing message", mutate: func(v url.Values) { v.Set("message", "") }, want: msgRequired},
		{name: "missing message beats bad email", mutate: func(v url.Values) { v.Set("message", ""); v.Set("email", "foo") }, want: msgRequired},
		{name: "no tld", mutate: func(v url.Values) { v.Set("email", "foo@bar") }, want: msgInvalidEmail},
		{name: "whitespace", mutate: func(v url.Values) { v.Set("email", "foo bar@baz.com") }, want: msgInvalidEmail},
		{name: "double at", mutate: func(v url.Values) { v.Set("email", "a@b@c.com") }, want: msgInvalidEmail},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			values := validValues()
			tc.mutate(values)
			submitter := &stubSubmitter{}
			state := NewFormState()

			err := NewController(submitter, state, nil).Submit(context.Background(), values)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.want, verr.Message)
			require.Empty(t, submitter.calls, "no request for invalid input")

			snap := state.Take()
			require.Equal(t, &Status{Kind: StatusError, Message: tc.want}, snap.Status)
			require.False(t, snap.WentBusy)
			require.Equal(t, SubmitLabel, snap.Label)
		})
	}
}

func TestSubmitSuccessClearsFields(t *testing.T) {
	t.Parallel()

	submitter := &stubSubmitter{reply: catalog.ContactReply{Success: true, Message: "OK"}}
	state := NewFormState()

	require.NoError(t, NewController(submitter, state, nil).Submit(context.Background(), validValues()))

	require.Len(t, submitter.calls, 1)
	require.Equal(t, "Listing", submitter.calls[0].Get("subject"), "extra fields are forwarded")

	snap := state.Take()
	require.Equal(t, &Status{Kind: StatusSuccess, Message: "OK"}, snap.Status)
	require.Empty(t, snap.Field("name"))
	require.True(t, snap.WentBusy)
	require.False(t, snap.Busy)
	require.Equal(t, SubmitLabel, snap.Label)
}

func TestSubmitRejectionKeepsFields(t *testing.T) {
	t.Parallel()

	submitter := &stubSubmitter{reply: catalog.ContactReply{Success: false, Message: "X"}}
	state := NewFormState()

	require.NoError(t, NewController(submitter, state, nil).Submit(context.Background(), validValues()))

	snap := state.Take()
	require.Equal(t, &Status{Kind: StatusError, Message: "X"}, snap.Status)
	require.Equal(t, "Priya", snap.Field("name"))
	require.False(t, snap.Busy)
}

func TestSubmitTransportFailures(t *testing.T) {
	t.Parallel()

	for _, failure := range []error{
		&catalog.HTTPError{Op: "submit-contact", Status: http.StatusInternalServerError},
		&catalog.NetworkError{Op: "submit-contact", Err: errors.New("connection refused")},
	} {
		submitter := &stubSubmitter{err: failure}
		state := NewFormState()

		err := NewController(submitter, state, nil).Submit(context.Background(), validValues())
		require.ErrorIs(t, err, failure)

		snap := state.Take()
		require.Equal(t, &Status{Kind: StatusError, Message: msgGenericFailure}, snap.Status)
		require.Equal(t, "Is the listing free?", snap.Field("message"))
		require.True(t, snap.WentBusy)
		require.False(t, snap.Busy)
		require.Equal(t, SubmitLabel, snap.Label)
	}
}

func TestSubmitClearsPreviousStatus(t *testing.T) {
	t.Parallel()

	state := NewFormState()
	state.ShowStatus(Status{Kind: StatusError, Message: "old"})

	submitter := &stubSubmitter{reply: catalog.ContactReply{Success: true, Message: "Thanks"}}
	require.NoError(t, NewController(submitter, state, nil).Submit(context.Background(), validValues()))
	require.Equal(t, "Thanks", state.Take().Status.Message)
}
