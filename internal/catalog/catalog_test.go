package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeQuestions(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		shape   Shape
		wantErr bool
	}{
		{
			name:  "wrapped",
			body:  `{"questions":[{"question":"1+1?","options":["A. 1","B. 2"],"answers":["B"],"numOptions":2}]}`,
			want:  1,
			shape: ShapeWrapped,
		},
		{
			name:  "bare",
			body:  `[{"question":"a","options":["A. x"],"answers":["A"]},{"question":"b","options":["A. y"],"answers":["A"]}]`,
			want:  2,
			shape: ShapeBare,
		},
		{name: "empty bare", body: `[]`, want: 0, shape: ShapeBare},
		{name: "object without questions", body: `{"items":[]}`, wantErr: true},
		{name: "questions not array", body: `{"questions":"nope"}`, wantErr: true},
		{name: "scalar", body: `42`, wantErr: true},
		{name: "garbage", body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, _ := DetectShape([]byte(tt.body))
			qs, err := DecodeQuestions([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidShape)
				assert.Equal(t, ShapeInvalid, shape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.shape, shape)
			assert.Len(t, qs, tt.want)
		})
	}
}

func TestDecodeQuestionsNormalizes(t *testing.T) {
	qs, err := DecodeQuestions([]byte(`[{"question":"q","options":["A. x","B. y","C. z"],"answers":[" b"]}]`))
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, 3, qs[0].NumOptions)
	assert.Equal(t, []string{"B"}, qs[0].Answers)
	assert.Equal(t, "B. y", qs[0].Option("B"))
	assert.Equal(t, "", qs[0].Option("Z"))
	assert.False(t, qs[0].IsMulti())
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "English", Course{Name: "ENW492c"}.Category())
	assert.Equal(t, "Security", Course{Name: "SSL101"}.Category())
	assert.Equal(t, "Other", Course{Name: "XYZ"}.Category())
	assert.Equal(t, "Other", Course{Name: "EN"}.Category())
}

func TestFilterCourses(t *testing.T) {
	courses := []Course{
		{ID: "1", Name: "ENW492c", Description: "Writing"},
		{ID: "2", Name: "SSL101", Description: "Academic skills"},
		{ID: "abc", Name: "MKT201"},
	}
	assert.Len(t, FilterCourses(courses, ""), 3)
	assert.Equal(t, "SSL101", FilterCourses(courses, "ssl")[0].Name)
	assert.Equal(t, "ENW492c", FilterCourses(courses, "WRIT")[0].Name)
	assert.Equal(t, "MKT201", FilterCourses(courses, "abc")[0].Name)
	assert.Empty(t, FilterCourses(courses, "zzz"))
}

func TestListCourses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"success":true,"data":[{"course_id":"1","course_name":"ENW492c","course_file":"enw.json","course_description":"d"}]}`))
	}))
	defer server.Close()

	c := NewClient(WithCourseURL(server.URL))
	courses, err := c.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "enw.json", courses[0].File)
}

func TestListCoursesUnsuccessful(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	courses, err := NewClient(WithCourseURL(server.URL)).ListCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestLoadQuestions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/enw.json":
			_, _ = w.Write([]byte(`{"questions":[{"question":"1+1?","options":["A. 1","B. 2"],"answers":["B"]}]}`))
		case "/bad.json":
			_, _ = w.Write([]byte(`{"oops":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(WithQuestionBaseURL(server.URL+"/"), WithLogger(quietLogger()))
	ctx := context.Background()

	qs := c.LoadQuestions(ctx, "enw.json")
	require.Len(t, qs, 1)
	assert.Equal(t, "1+1?", qs[0].Text)

	// Failures degrade to an empty, non-nil catalog.
	for _, file := range []string{"bad.json", "missing.json"} {
		qs := c.LoadQuestions(ctx, file)
		assert.NotNil(t, qs, file)
		assert.Empty(t, qs, file)
	}

	_, err := c.FetchQuestions(ctx, "bad.json")
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = c.FetchQuestions(ctx, "missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestDecodeQuestionsSkipsMalformedEntries(t *testing.T) {
	body := `[
		{"question":"kept","options":["A. x","B. y"],"answers":["A"]},
		{"question":"","options":["A. x"],"answers":["A"]},
		{"question":"no answers","options":["A. x"],"answers":[]},
		{"question":"bad options","options":"A. x","answers":["A"]},
		"just a string"
	]`
	qs, skipped, err := decodeBank([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, 4, skipped)
	require.Len(t, qs, 1)
	assert.Equal(t, "kept", qs[0].Text)
}

func TestValidateEntry(t *testing.T) {
	assert.NoError(t, ValidateEntry(`{"question":"q","options":["A. x"],"answers":["A"],"numOptions":1,"extra":true}`))
	assert.Error(t, ValidateEntry(`{"question":"q","options":["A. x"]}`))
	assert.Error(t, ValidateEntry(`{"question":"q","options":["A. x"],"answers":["A"],"numOptions":1.5}`))
	assert.Error(t, ValidateEntry(`not json`))
}
