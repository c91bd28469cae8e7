// Package draft builds the dtf.ru draft document and its form encoding.
// Everything that mirrors the site's editor schema lives here.
package draft

import (
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	BlockMedia = "media"
	BlockText  = "text"

	imageType      = "image"
	textFormatHTML = "html"
	truncatedSame  = "<<<same>>>"
)

// Upload is one file's outcome as handed to the draft builder.
type Upload struct {
	Title   string
	Asset   Asset
	Success bool
}

// Block is one editor block. Data holds a MediaData or a TextData.
type Block struct {
	Type   string  `json:"type"`
	Cover  bool    `json:"cover"`
	Hidden bool    `json:"hidden"`
	Anchor *string `json:"anchor"`
	Data   any     `json:"data"`
}

// MediaData wraps a single uploaded image.
type MediaData struct {
	WithBorder     bool        `json:"with_border"`
	WithBackground bool        `json:"with_background"`
	Items          []MediaItem `json:"items"`
}

// MediaItem is an image with its caption.
type MediaItem struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Image  Image  `json:"image"`
}

// Image is the embedded asset reference.
type Image struct {
	Type   string          `json:"type"`
	Render json.RawMessage `json:"render"`
	Data   ImageData       `json:"data"`
}

// ImageData is the asset description in the editor's shape.
type ImageData struct {
	Asset AssetData
	Type  string
}

// MarshalJSON emits the asset fields plus the editor-only keys. Server values
// for hash and external_service win over the empty defaults.
func (d ImageData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Asset.Extra)+8)
	out["hash"] = ""
	out["external_service"] = []any{}
	for k, v := range d.Asset.Extra {
		out[k] = v
	}
	out["uuid"] = d.Asset.UUID
	out["width"] = d.Asset.Width
	out["height"] = d.Asset.Height
	out["size"] = d.Asset.Size
	out["type"] = d.Type
	out["color"] = d.Asset.Color
	return json.Marshal(out)
}

// TextData is a fixed HTML paragraph.
type TextData struct {
	Text          string `json:"text"`
	Format        string `json:"format"`
	TextTruncated string `json:"text_truncated"`
}

// Document is the entry object posted to /writing/save.
type Document struct {
	ID                       int64   `json:"id"`
	UserID                   int64   `json:"user_id"`
	Type                     int     `json:"type"`
	Title                    string  `json:"title"`
	URL                      string  `json:"url"`
	Date                     int64   `json:"date"`
	DateStr                  string  `json:"date_str"`
	ModificationDate         int64   `json:"modification_date"`
	ModificationDateStr      string  `json:"modification_date_str"`
	IsPublished              bool    `json:"is_published"`
	SubsiteID                int64   `json:"subsite_id"`
	SubsiteName              string  `json:"subsite_name"`
	Removed                  bool    `json:"removed"`
	CustomStyle              string  `json:"custom_style"`
	Path                     string  `json:"path"`
	ForcedToMainpage         bool    `json:"forced_to_mainpage"`
	IsAdvertisement          bool    `json:"is_advertisement"`
	IsEnabledInstantArticles bool    `json:"is_enabled_instant_articles"`
	IsEnabledAMP             bool    `json:"is_enabled_amp"`
	IsApprovedForPublicRSS   bool    `json:"is_approved_for_public_rss"`
	IsDisabledLikes          bool    `json:"is_disabled_likes"`
	IsDisabledComments       bool    `json:"is_disabled_comments"`
	IsDisabledBestComments   bool    `json:"is_disabled_best_comments"`
	IsDisabledAd             bool    `json:"is_disabled_ad"`
	IsWide                   bool    `json:"is_wide"`
	IsStillUpdating          bool    `json:"is_still_updating"`
	Withheld                 bool    `json:"withheld"`
	LockedByAdmin            bool    `json:"locked_by_admin"`
	IsShowThanks             bool    `json:"is_show_thanks"`
	IsCleanCover             int     `json:"is_clean_cover"`
	IsEditorial              bool    `json:"is_editorial"`
	IsDisabledApps           bool    `json:"is_disabled_apps"`
	IsSpecial                bool    `json:"is_special"`
	IsFilledByEditors        bool    `json:"is_filled_by_editors"`
	IsHoldOnMain             bool    `json:"is_holdonmain"`
	IsHoldOnFlash            int     `json:"is_holdonflash"`
	ExternalAccessLink       string  `json:"external_access_link"`
	Attaches                 string  `json:"attaches"`
	AnnouncementLinks        string  `json:"announcement_links"`
	Entry                    Content `json:"entry"`
}

// Content carries the ordered blocks.
type Content struct {
	Blocks []Block `json:"blocks"`
}

// New returns an empty unpublished draft owned by accountID.
func New(title string, accountID int64) *Document {
	return &Document{
		UserID:       accountID,
		Type:         1,
		Title:        title,
		SubsiteID:    accountID,
		IsEnabledAMP: true,
		Entry:        Content{Blocks: []Block{}},
	}
}

// Build assembles a draft from upload outcomes in order, skipping failures,
// and appends the watermark when requested.
func Build(title string, accountID int64, watermark bool, uploads []Upload) *Document {
	doc := New(title, accountID)
	for _, u := range uploads {
		if !u.Success {
			continue
		}
		doc.AddMedia(u.Title, u.Asset)
	}
	if watermark {
		doc.AddWatermark()
	}
	return doc
}

// AddMedia appends one media block.
func (d *Document) AddMedia(title string, asset Asset) {
	render := asset.Render
	if len(render) == 0 {
		render = json.RawMessage("null")
	}
	d.Entry.Blocks = append(d.Entry.Blocks, Block{
		Type: BlockMedia,
		Data: MediaData{
			Items: []MediaItem{{
				Title: title,
				Image: Image{
					Type:   imageType,
					Render: render,
					Data:   ImageData{Asset: asset.Data, Type: asset.Type},
				},
			}},
		},
	})
}

// AddWatermark appends the three promotional text blocks.
func (d *Document) AddWatermark() {
	for _, text := range watermarkTexts {
		d.Entry.Blocks = append(d.Entry.Blocks, Block{
			Type: BlockText,
			Data: TextData{Text: text, Format: textFormatHTML, TextTruncated: truncatedSame},
		})
	}
}

// MediaCount returns the number of media blocks.
func (d *Document) MediaCount() int {
	n := 0
	for _, b := range d.Entry.Blocks {
		if b.Type == BlockMedia {
			n++
		}
	}
	return n
}

// Form encodes the document as the /writing/save request body.
func (d *Document) Form() (url.Values, error) {
	entry, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal entry: %w", err)
	}
	form := url.Values{}
	form.Set("autosaving", "true")
	form.Set("mode", "raw")
	form.Set("additionalData[editorType]", "web full")
	form.Set("additionalData[entryPoint]", "Header Create Button")
	form.Set("entry", string(entry))
	return form, nil
}
