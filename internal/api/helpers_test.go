package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/findmypet-api/internal/api/shared"
	"github.com/phrazzld/findmypet-api/internal/mocks"
	"github.com/phrazzld/findmypet-api/internal/service"
	"github.com/stretchr/testify/require"
)

type testFile struct {
	field    string
	filename string
	content  []byte
}

// multipartBody encodes fields and an optional file as multipart/form-data.
func multipartBody(t *testing.T, fields map[string]string, file *testFile) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile(file.field, file.filename)
		require.NoError(t, err)
		_, err = fw.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// withAuth puts userID in the request context the way the auth middleware does.
func withAuth(r *http.Request, userID int64) *http.Request {
	return r.WithContext(shared.WithUserID(r.Context(), userID))
}

// withPathID sets the chi {id} URL parameter.
func withPathID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(paramID, id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}

type petFixture struct {
	posts       *mocks.MockPetPostStore
	attachments *mocks.MockAttachmentStore
	handler     *PetPostHandler
}

func newPetFixture(t *testing.T, maxUpload int64) *petFixture {
	t.Helper()

	posts := mocks.NewMockPetPostStore()
	attachments := mocks.NewMockAttachmentStore()
	svc, err := service.NewPetPostService(posts, &mocks.MockTransactor{}, attachments, nil)
	require.NoError(t, err)

	return &petFixture{
		posts:       posts,
		attachments: attachments,
		handler:     NewPetPostHandler(svc, maxUpload, nil),
	}
}

func validPetFields() map[string]string {
	return map[string]string{
		"title":             "Lost cat",
		"description":       "Grey tabby, answers to Miso",
		"pet_type":          "cat",
		"last_seen_address": "12 Elm Street",
		"last_seen_date":    "2024-05-01T18:30:00Z",
	}
}
