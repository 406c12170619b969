package response

import (
	"bytes"
	"encoding/json"
)

// wireResponse is the top-level GraphQL response envelope.
type wireResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors interface{}     `json:"errors,omitempty"`
}

// MarshalJSON renders r as the standard `{"data": ..., "errors": [...]}`
// GraphQL wire response. A nil Root marshals data as JSON null.
func (r *Response) MarshalJSON() ([]byte, error) {
	var data json.RawMessage
	if r.Root == nil {
		data = []byte("null")
	} else {
		var buf bytes.Buffer
		if err := r.writeObject(&buf, *r.Root); err != nil {
			return nil, err
		}
		data = append(json.RawMessage(nil), buf.Bytes()...)
	}

	out := wireResponse{Data: data}
	if len(r.Errors) > 0 {
		out.Errors = r.Errors
	}
	return json.Marshal(out)
}

func (r *Response) writeObject(buf *bytes.Buffer, id ObjectID) error {
	if int(id.Part) >= len(r.Parts) || r.Parts[id.Part] == nil {
		buf.WriteString("null")
		return nil
	}
	part := r.Parts[id.Part]
	if int(id.Index) >= len(part.Objects) {
		buf.WriteString("null")
		return nil
	}
	obj := part.Objects[id.Index]

	buf.WriteByte('{')
	for i, f := range obj.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Edge.Key)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := r.writeValue(buf, f.Value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func (r *Response) writeList(buf *bytes.Buffer, id ListID) error {
	if int(id.Part) >= len(r.Parts) || r.Parts[id.Part] == nil {
		buf.WriteString("null")
		return nil
	}
	part := r.Parts[id.Part]
	end := int(id.Offset) + int(id.Length)
	if end > len(part.Lists) {
		buf.WriteString("null")
		return nil
	}
	items := part.Lists[id.Offset:end]

	buf.WriteByte('[')
	for i, v := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := r.writeValue(buf, v); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func (r *Response) writeValue(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case ValueNull:
		buf.WriteString("null")
		return nil
	case ValueBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case ValueInt:
		b, err := json.Marshal(v.Int)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	case ValueFloat:
		b, err := json.Marshal(v.Float)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	case ValueString:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	case ValueJSON:
		if len(v.Raw) == 0 {
			buf.WriteString("null")
			return nil
		}
		buf.Write(v.Raw)
		return nil
	case ValueObject:
		return r.writeObject(buf, v.Obj)
	case ValueList:
		return r.writeList(buf, v.List)
	default:
		buf.WriteString("null")
		return nil
	}
}
