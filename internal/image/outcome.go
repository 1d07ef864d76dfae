package image

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Success Kind = iota
	ContentModerationRejected
	APIError
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ContentModerationRejected:
		return "content_moderation"
	case APIError:
		return "api_error"
	case TransportFailure:
		return "transport_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const contentModeration = "content_moderation"

var (
	ErrContentModeration = errors.New("request was flagged by content moderation")
	ErrAPI               = errors.New("api error")
	ErrTransport         = errors.New("transport failure")
)

// Outcome is the result of one generation call. Image is set only on Success,
// Message only on the failure kinds other than ContentModerationRejected.
type Outcome struct {
	Kind    Kind
	Image   []byte
	Message string
}

func Succeeded(image []byte) Outcome {
	return Outcome{Kind: Success, Image: image}
}

func Rejected() Outcome {
	return Outcome{Kind: ContentModerationRejected}
}

func Failed(message string) Outcome {
	return Outcome{Kind: APIError, Message: message}
}

func Unreachable(err error) Outcome {
	return Outcome{Kind: TransportFailure, Message: err.Error()}
}

func (o Outcome) OK() bool {
	return o.Kind == Success
}

// Err returns nil on success and an error wrapping one of ErrContentModeration,
// ErrAPI or ErrTransport otherwise.
func (o Outcome) Err() error {
	switch o.Kind {
	case Success:
		return nil
	case ContentModerationRejected:
		return ErrContentModeration
	case APIError:
		return fmt.Errorf("%w: %s", ErrAPI, o.Message)
	default:
		return fmt.Errorf("%w: %s", ErrTransport, o.Message)
	}
}

type errorBody struct {
	Name   string   `json:"name"`
	Errors []string `json:"errors"`
}

// Classify turns a completed HTTP exchange into an Outcome.
func Classify(status int, body []byte) Outcome {
	if status >= 200 && status < 300 {
		return Succeeded(body)
	}

	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	description := fmt.Sprintf("%d %s", status, http.StatusText(status))

	if status == http.StatusForbidden {
		switch eb.Name {
		case contentModeration:
			return Rejected()
		case "":
			return Failed(description)
		default:
			return Failed(eb.Name)
		}
	}

	if eb.Name != "" {
		description += ": " + eb.Name
	}
	return Failed(description)
}
