// Package patch holds the request-side representation of a partial update,
// where an absent key, an explicit null and a value are three different things.
package patch

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/psds-microservice/returns-service/internal/errs"
	"github.com/psds-microservice/returns-service/internal/model"
)

// Field is a tri-state JSON value: unset (key absent), null, or a value.
// Non-string JSON values are kept in their literal text form.
type Field struct {
	Set      bool
	Null     bool
	IsString bool
	Value    string
}

func (f *Field) UnmarshalJSON(b []byte) error {
	f.Set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		f.Null = true
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		f.IsString = true
		return json.Unmarshal(b, &f.Value)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	f.Value = buf.String()
	return nil
}

// Ptr returns nil for null, the value otherwise. Only meaningful when Set.
func (f Field) Ptr() *string {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// Request is the PATCH /api/returns body.
type Request struct {
	TicketLink        Field `json:"ticket_link"`
	Status            Field `json:"status"`
	OMUpdate          Field `json:"om_update"`
	DesignatedOMAgent Field `json:"designated_om_agent"`
}

// Change is a validated update. A nil outer pointer leaves the column
// untouched; a nil inner pointer writes NULL.
type Change struct {
	TicketLink        string
	Status            *string
	OMUpdate          **string
	DesignatedOMAgent **string
}

// Validate normalizes the request into a Change or returns an
// *errs.ValidationError.
func (r Request) Validate() (Change, error) {
	if !r.TicketLink.Set || r.TicketLink.Null || !r.TicketLink.IsString || strings.TrimSpace(r.TicketLink.Value) == "" {
		return Change{}, errs.Invalid("ticket_link is required")
	}
	c := Change{TicketLink: r.TicketLink.Value}

	if r.Status.Set && !r.Status.Null {
		if s := strings.TrimSpace(r.Status.Value); s != "" {
			if !model.Status(s).Valid() {
				return Change{}, errs.Invalid("status must be one of: " + statusList())
			}
			c.Status = &s
		}
	}
	if r.OMUpdate.Set {
		v := r.OMUpdate.Ptr()
		c.OMUpdate = &v
	}
	if r.DesignatedOMAgent.Set {
		var v *string
		if !r.DesignatedOMAgent.Null {
			if s := strings.TrimSpace(r.DesignatedOMAgent.Value); s != "" {
				v = &s
			}
		}
		c.DesignatedOMAgent = &v
	}

	if c.Status == nil && c.OMUpdate == nil && c.DesignatedOMAgent == nil {
		return Change{}, errs.Invalid("At least one of status, om_update, or designated_om_agent is required")
	}
	return c, nil
}

func statusList() string {
	names := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
