package image

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const DefaultBaseURL = "https://api.stability.ai"

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Field is a single multipart form field. File is set for binary parts.
type Field struct {
	Name  string
	Value string
	File  *File
}

type Payload struct {
	Endpoint string
	Fields   []Field
}

func (p Payload) Get(name string) (Field, bool) {
	return lo.Find(p.Fields, func(f Field) bool { return f.Name == name })
}

func (p Payload) Names() []string {
	return lo.Map(p.Fields, func(f Field, _ int) string { return f.Name })
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode renders the payload as a multipart/form-data body and returns it
// along with the matching Content-Type header value.
func (p Payload) Encode() ([]byte, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, f := range p.Fields {
		if f.File == nil {
			if err := writer.WriteField(f.Name, f.Value); err != nil {
				writer.Close()
				return nil, "", fmt.Errorf("writing field %s: %w", f.Name, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Name), quoteEscaper.Replace(f.File.Name)))
		h.Set("Content-Type", f.File.ContentType)
		part, err := writer.CreatePart(h)
		if err != nil {
			writer.Close()
			return nil, "", fmt.Errorf("creating part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.File.Data); err != nil {
			writer.Close()
			return nil, "", fmt.Errorf("writing part %s: %w", f.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form data writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}

type Builder struct {
	BaseURL string
}

func NewBuilder(baseURL string) *Builder {
	return &Builder{BaseURL: strings.TrimRight(lo.Ternary(baseURL != "", baseURL, DefaultBaseURL), "/")}
}

// Build maps a request onto the endpoint and form fields of its model family.
// It does not validate; a request the family cannot serve is sent as given.
func (b *Builder) Build(req Request) Payload {
	family := req.Model.Family()
	fields := []Field{
		{Name: "prompt", Value: req.Prompt},
		{Name: "output_format", Value: req.OutputFormat},
		{Name: "seed", Value: strconv.FormatUint(uint64(req.Seed), 10)},
	}
	if req.NegativePrompt != "" {
		fields = append(fields, Field{Name: "negative_prompt", Value: req.NegativePrompt})
	}

	if family.SupportsImageToImage {
		fields = append(fields,
			Field{Name: "model", Value: string(req.Model)},
			Field{Name: "mode", Value: string(req.Mode)},
		)
		switch req.Mode {
		case TextToImage:
			fields = append(fields, Field{Name: "aspect_ratio", Value: req.AspectRatio})
		case ImageToImage:
			if req.Image != nil {
				fields = append(fields, Field{Name: "image", File: &File{
					Name:        req.Image.Name,
					ContentType: "image/png",
					Data:        req.Image.Data,
				}})
			}
			if req.Strength != nil {
				fields = append(fields, Field{Name: "strength", Value: strconv.FormatFloat(*req.Strength, 'f', -1, 64)})
			}
		}
	} else {
		fields = append(fields, Field{Name: "aspect_ratio", Value: req.AspectRatio})
		if family.SupportsStylePreset && req.StylePreset != "" {
			fields = append(fields, Field{Name: "style_preset", Value: req.StylePreset})
		}
	}

	return Payload{Endpoint: b.BaseURL + family.Path, Fields: fields}
}
