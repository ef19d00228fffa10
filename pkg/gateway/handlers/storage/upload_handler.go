package storage

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	perrors "github.com/DeBrosOfficial/pinner/pkg/errors"
	"github.com/DeBrosOfficial/pinner/pkg/httputil"
	"github.com/DeBrosOfficial/pinner/pkg/logging"
	"github.com/DeBrosOfficial/pinner/pkg/upload"
)

// multipartOverhead is the slack allowed on top of the file size for boundaries and other fields.
const multipartOverhead = 1 << 20

// fileField is the multipart field carrying the upload.
const fileField = "file"

// UploadHandler handles POST /api/storage/upload.
// It streams a multipart/form-data body, stores the "file" part on the primary store
// and attempts replication before responding.
func (h *Handlers) UploadHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.uploader.Handle(r.Context(), *req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, UploadResponse{
		Success:    true,
		CID:        result.FinalCID,
		IPFSCID:    result.PrimaryCID,
		NFTStorage: result.Replicated,
		Filename:   result.Filename,
		Size:       result.Size,
		MimeType:   result.MimeType,
		Gateways:   result.Gateways,
	})
}

// readUpload pulls the first file part named "file" out of the request body.
// Other parts are discarded. Exceeding the size cap yields a PayloadTooLargeError.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request) (*upload.Request, error) {
	limit := h.config.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		// Not a multipart body, so there is no file part.
		h.logger.ComponentDebug(logging.ComponentGateway, "upload without multipart body", zap.Error(err))
		return nil, perrors.ErrNoFileProvided
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, perrors.ErrNoFileProvided
		}
		if err != nil {
			return nil, h.bodyError(err)
		}

		if part.FormName() != fileField || part.FileName() == "" {
			if _, err := io.Copy(io.Discard, part); err != nil {
				return nil, h.bodyError(err)
			}
			continue
		}

		return h.readFilePart(part, limit)
	}
}

func (h *Handlers) readFilePart(part *multipart.Part, limit int64) (*upload.Request, error) {
	defer part.Close()

	data, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return nil, h.bodyError(err)
	}
	if int64(len(data)) > limit {
		return nil, perrors.NewPayloadTooLargeError(limit)
	}

	mimeType := part.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &upload.Request{
		Data:     data,
		Filename: part.FileName(),
		MimeType: mimeType,
	}, nil
}

// bodyError classifies a failure while reading the request body.
func (h *Handlers) bodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return perrors.NewPayloadTooLargeError(h.config.MaxUploadSize)
	}
	return perrors.NewValidationError(fileField, "malformed multipart body: "+err.Error())
}
