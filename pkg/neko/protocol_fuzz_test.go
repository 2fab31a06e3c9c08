package neko

import "testing"

func FuzzDecodeMessage(f *testing.F) {
	f.Add([]byte(`{"playEvent":{"timeMs":1000}}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`not json`))

	f.Fuzz(func(t *testing.T, payload []byte) {
		msg, err := DecodeMessage(payload)
		if err != nil {
			return
		}
		if err := msg.Validate(); err != nil {
			t.Fatalf("decoded message failed validation: %v", err)
		}
	})
}
