package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/findmypet-api/internal/api/shared"
	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/phrazzld/findmypet-api/internal/service"
)

// Form and file field names for pet post submissions.
const (
	paramID        = "id"
	imageFormField = "image"

	// multipart parts beyond this many bytes are spooled to disk
	multipartMemory = 8 << 20
)

// getUserIDFromContext extracts the authenticated account ID placed in the
// context by the authentication middleware. It writes a 401 on failure.
func getUserIDFromContext(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgNotAuthenticated)
		return 0, false
	}
	return userID, true
}

// getPathID parses the {id} URL parameter. Values that are not a valid
// int64 cannot name an existing post, so they answer 404.
func getPathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, paramID), 10, 64)
	if err != nil || id < 0 {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgPetPostNotFound)
		return 0, false
	}
	return id, true
}

// petPostSubmission is a parsed multipart (or urlencoded) pet post body.
type petPostSubmission struct {
	form  domain.PetPostForm
	image *service.ImageUpload
	close func()
}

// parsePetPostSubmission reads the request body, capped at maxBytes.
// The caller must call close on success. On failure it has already
// written the error response.
func parsePetPostSubmission(
	w http.ResponseWriter,
	r *http.Request,
	maxBytes int64,
) (*petPostSubmission, bool) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, MsgFileTooLarge, err)
			return nil, false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
		return nil, false
	}

	sub := &petPostSubmission{
		form: domain.PetPostForm{
			Title:           formValue(r, domain.FieldTitle),
			Description:     formValue(r, domain.FieldDescription),
			PetType:         formValue(r, domain.FieldPetType),
			Status:          formValue(r, domain.FieldStatus),
			LastSeenAddress: formValue(r, domain.FieldLastSeenAddress),
			LastSeenDate:    formValue(r, domain.FieldLastSeenDate),
			Latitude:        formValue(r, domain.FieldLatitude),
			Longitude:       formValue(r, domain.FieldLongitude),
		},
		close: func() {},
	}

	if r.MultipartForm == nil {
		return sub, true
	}

	mf := r.MultipartForm
	sub.close = func() { _ = mf.RemoveAll() }

	file, header, err := r.FormFile(imageFormField)
	switch {
	case err == nil:
		closeForm := sub.close
		sub.close = func() {
			_ = file.Close()
			closeForm()
		}
		sub.image = &service.ImageUpload{Filename: header.Filename, Content: file}
	case errors.Is(err, http.ErrMissingFile):
	default:
		sub.close()
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
		return nil, false
	}

	return sub, true
}

// formValue returns a pointer to the first submitted value of name, or nil
// when the field was not sent at all.
func formValue(r *http.Request, name string) *string {
	values, ok := r.PostForm[name]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
