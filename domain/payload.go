// Package domain contains core concepts of the broadcast hub.
// This file defines the closed set of publishable payload variants.
// Payloads are opaque to the dispatcher: they are carried and serialized
// as-is, never inspected by the delivery pipeline.
package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Kind tags an event with its payload variant.
type Kind string

const (
	KindJoin          Kind = "join"
	KindLeave         Kind = "leave"
	KindBroadcast     Kind = "broadcast"
	KindBulletComment Kind = "bullet_comment"
	KindPin           Kind = "pin"
	KindTimer         Kind = "timer"
	KindCanvas        Kind = "canvas"
)

var validate = validator.New()

// ValidatePayload checks the structural rules of a typed payload.
func ValidatePayload(p any) error {
	return validate.Struct(p)
}

// Broadcast is a plain text message addressed to the whole room.
type Broadcast struct {
	Message string `json:"message" validate:"required"`
}

// BulletComment is an overlay comment scrolling across the client view.
type BulletComment struct {
	Anonymous   bool      `json:"anonymous"`
	FromUser    string    `json:"fromUser"`
	Type        int       `json:"type" validate:"gte=0"`
	Message     string    `json:"message" validate:"required"`
	Emoji       string    `json:"emoji"`
	CreatedTime time.Time `json:"created_time"`
	Recipients  []string  `json:"recipients"`
}

// Pin highlights a message for a set of recipients.
type Pin struct {
	Message     string    `json:"message" validate:"required"`
	CreatedTime time.Time `json:"created_time"`
	Recipients  []string  `json:"recipients"`
}

// Timer starts a countdown on the clients of a room.
type Timer struct {
	Countdown   int       `json:"countdown" validate:"gt=0"`
	CreatedTime time.Time `json:"created_time"`
	Recipients  []string  `json:"recipients"`
}

// CanvasType enumerates the supported drawing primitives.
type CanvasType string

const (
	CanvasCircle    CanvasType = "circle"
	CanvasText      CanvasType = "text"
	CanvasRectangle CanvasType = "rectangle"
	CanvasLine      CanvasType = "line"
)

// Canvas is one drawing operation replicated to the room's shared board.
type Canvas struct {
	StartX                   float64    `json:"start_x"`
	StartY                   float64    `json:"start_y"`
	EndX                     float64    `json:"end_x"`
	EndY                     float64    `json:"end_y"`
	CanvasWidth              float64    `json:"canvas_width" validate:"gt=0"`
	CanvasHeight             float64    `json:"canvas_height" validate:"gt=0"`
	StrokeStyle              string     `json:"stroke_style"`
	FillStyle                string     `json:"fill_style"`
	LineWidth                float64    `json:"line_width"`
	LineCap                  string     `json:"line_cap"`
	LineDash                 []float64  `json:"line_dash"`
	GlobalCompositeOperation string     `json:"global_composite_operation"`
	FontType                 string     `json:"font_type"`
	FontSize                 float64    `json:"font_size"`
	TextMaxWidth             float64    `json:"text_max_width"`
	TextBaseline             string     `json:"text_baseline"`
	ContentText              *string    `json:"content_text"`
	Type                     CanvasType `json:"type" validate:"required,oneof=circle text rectangle line"`
}
