package dtf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/five82/imageposter/internal/draft"
)

const (
	uploadField   = "file_0"
	authModuleKey = "module.auth"
)

// CreateDraftShell opens a new empty draft on the server.
func (c *Client) CreateDraftShell(ctx context.Context) (DraftHandle, error) {
	env, err := c.get(ctx, pathWriting, url.Values{"to": {"u"}, "mode": {"ajax"}})
	if err != nil {
		return DraftHandle{}, err
	}
	if !env.Has(authModuleKey) {
		c.logger.Error("module.auth is not found in response")
		return DraftHandle{}, invalidResponse(CodeMissingAuthModule, "")
	}
	return DraftHandle{Auth: env.Raw(authModuleKey)}, nil
}

// UploadFile posts a single file and returns the first result element. The
// asset is returned exactly as the server described it.
func (c *Client) UploadFile(ctx context.Context, path, mimeType string) (draft.Asset, error) {
	file, err := os.Open(path)
	if err != nil {
		return draft.Asset{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return draft.Asset{}, fmt.Errorf("stat upload: %w", err)
	}

	body, contentType, err := newUploadBody(file, info.Size(), filepath.Base(path), mimeType)
	if err != nil {
		return draft.Asset{}, fmt.Errorf("build upload form: %w", err)
	}

	c.logger.Debug("uploading file", "path", path, "mime", mimeType, "bytes", body.size)
	env, err := c.call(ctx, http.MethodPost, pathUpload, nil, body, contentType)
	if err != nil {
		return draft.Asset{}, err
	}

	var results []json.RawMessage
	if env.Has("result") {
		if err := env.Decode("result", &results); err != nil {
			return draft.Asset{}, &Error{Kind: KindInvalidResponse, Code: CodeMissingResult, Message: fallbackMessage, Err: err}
		}
	}
	if len(results) == 0 {
		return draft.Asset{}, invalidResponse(CodeMissingResult, "upload returned no result")
	}

	var head struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(results[0], &head); err != nil {
		return draft.Asset{}, &Error{Kind: KindInvalidResponse, Code: CodeMissingResult, Message: fallbackMessage, Body: string(results[0]), Err: err}
	}
	if head.Type == "error" {
		c.logger.Warn("server rejected upload", "path", path, "data", string(head.Data))
		return draft.Asset{}, &Error{Kind: KindInvalidResponse, Code: CodeUploadRejected, Message: uploadErrorMessage(head.Data), Body: string(results[0])}
	}

	var asset draft.Asset
	if err := json.Unmarshal(results[0], &asset); err != nil {
		return draft.Asset{}, &Error{Kind: KindInvalidResponse, Code: CodeMissingResult, Message: fallbackMessage, Body: string(results[0]), Err: err}
	}
	if asset.Data.UUID == "" {
		return draft.Asset{}, &Error{Kind: KindInvalidResponse, Code: CodeMissingResult, Message: "upload result has no uuid", Body: string(results[0])}
	}
	if _, err := uuid.Parse(asset.Data.UUID); err != nil {
		c.logger.Warn("asset uuid is not a UUID", "uuid", asset.Data.UUID, "error", err)
	}
	c.logger.Debug("upload done", "path", path, "uuid", asset.Data.UUID, "width", asset.Data.Width, "height", asset.Data.Height)
	return asset, nil
}

// sizedBody is a request body whose length is known up front, so the request
// goes out with Content-Length instead of chunked encoding.
type sizedBody struct {
	io.Reader
	size int64
}

// newUploadBody frames src as the file_0 part followed by render=false. The
// file is streamed between the pre-rendered multipart head and tail.
func newUploadBody(src io.Reader, size int64, filename, mimeType string) (sizedBody, string, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	var frame bytes.Buffer
	writer := multipart.NewWriter(&frame)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, uploadField, quoteEscape(filename)))
	h.Set("Content-Type", mimeType)
	if _, err := writer.CreatePart(h); err != nil {
		return sizedBody{}, "", err
	}
	head := bytes.Clone(frame.Bytes())
	frame.Reset()
	if err := writer.WriteField("render", "false"); err != nil {
		return sizedBody{}, "", err
	}
	if err := writer.Close(); err != nil {
		return sizedBody{}, "", err
	}
	tail := bytes.Clone(frame.Bytes())

	return sizedBody{
		Reader: io.MultiReader(bytes.NewReader(head), io.LimitReader(src, size), bytes.NewReader(tail)),
		size:   int64(len(head)) + size + int64(len(tail)),
	}, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func quoteEscape(s string) string { return quoteEscaper.Replace(s) }

func uploadErrorMessage(data json.RawMessage) string {
	var payload struct {
		Message string `json:"message"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Text != "" {
			return payload.Text
		}
	}
	return "upload rejected by server"
}

// SaveDraft assembles the draft from the successful uploads, in order, and
// saves it. The watermark blocks are appended when watermark is set.
func (c *Client) SaveDraft(ctx context.Context, title string, accountID int64, watermark bool, uploads []draft.Upload) (DraftResult, error) {
	doc := draft.Build(title, accountID, watermark, uploads)
	form, err := doc.Form()
	if err != nil {
		return DraftResult{}, err
	}
	c.logger.Debug("saving draft", "title", title, "media_blocks", doc.MediaCount(), "blocks", len(doc.Entry.Blocks))

	env, err := c.postForm(ctx, pathSave, form)
	if err != nil {
		return DraftResult{}, err
	}
	result := DraftResult{Code: env.Code, Data: env.Raw("data")}
	if !env.HasCode {
		result.Code = http.StatusOK
	}
	result.Message = responseMessage(env.Raw("rm"))
	if len(result.Data) > 0 {
		var payload struct {
			Entry struct {
				URL string `json:"url"`
			} `json:"entry"`
		}
		if err := json.Unmarshal(result.Data, &payload); err == nil {
			result.URL = payload.Entry.URL
		}
	}
	c.logger.Info("draft saved", "url", result.URL)
	return result, nil
}
