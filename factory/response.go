package factory

import "go.uber.org/zap"

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Instantiate2Msg asks the host to create a contract from CodeID at the
// address derived from the sender, the code checksum and Salt.
type Instantiate2Msg struct {
	Admin  string `json:"admin,omitempty"`
	CodeID uint64 `json:"code_id"`
	Label  string `json:"label"`
	Msg    []byte `json:"msg"`
	Funds  []Coin `json:"funds"`
	Salt   []byte `json:"salt"`
}

type Response struct {
	Attributes []Attribute       `json:"attributes"`
	Messages   []Instantiate2Msg `json:"messages"`
}

func NewResponse() *Response {
	return &Response{}
}

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

func (r *Response) AddMessage(msg Instantiate2Msg) *Response {
	r.Messages = append(r.Messages, msg)
	return r
}

// Attr returns the value of the first attribute named key.
func (r *Response) Attr(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func (r *Response) zapFields() []zap.Field {
	fields := make([]zap.Field, 0, len(r.Attributes)+1)
	for _, a := range r.Attributes {
		fields = append(fields, zap.String(a.Key, a.Value))
	}
	return append(fields, zap.Int("messages", len(r.Messages)))
}
