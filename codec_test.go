package rfscall_test

import (
	"bytes"
	"errors"
	"testing"

	"code.duskforge.dev/rfscall"
)

func TestRequestRoundTrip(t *testing.T) {
	cases := []rfscall.Request{
		{Op: rfscall.OpOpen, Params: []rfscall.Slot{
			rfscall.Slot("/tmp/a.txt"), rfscall.IntSlot(0), rfscall.IntSlot(0644),
		}},
		{Op: rfscall.OpRead, Params: []rfscall.Slot{rfscall.IntSlot(12345), {}, rfscall.IntSlot(5)}},
		{Op: rfscall.OpFreedirtree, Params: nil},
		// Slot bytes containing \r\n must round-trip because size is explicit.
		{Op: rfscall.OpWrite, Params: []rfscall.Slot{
			rfscall.IntSlot(12345), rfscall.Slot("hello\r\nworld"), rfscall.IntSlot(12),
		}},
	}

	for i, want := range cases {
		payload := rfscall.EncodeRequest(want)
		got, err := rfscall.DecodeRequest(payload)
		if err != nil {
			t.Fatalf("case %d: decode: %v", i, err)
		}
		if got.Op != want.Op {
			t.Fatalf("case %d: op = %v, want %v", i, got.Op, want.Op)
		}
		if len(got.Params) != len(want.Params) {
			t.Fatalf("case %d: param count = %d, want %d", i, len(got.Params), len(want.Params))
		}
		for j := range want.Params {
			if !bytes.Equal(got.Params[j], want.Params[j]) {
				t.Fatalf("case %d: param %d = %q, want %q", i, j, got.Params[j], want.Params[j])
			}
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	cases := []rfscall.Response{
		{Err: 0, Returns: []rfscall.Slot{rfscall.IntSlot(12345)}},
		{Err: 9, Returns: nil}, // EBADF, no valid handle
		{Err: 0, Returns: []rfscall.Slot{rfscall.IntSlot(5), rfscall.Slot("hello")}},
	}

	for i, want := range cases {
		payload := rfscall.EncodeResponse(want)
		got, err := rfscall.DecodeResponse(payload)
		if err != nil {
			t.Fatalf("case %d: decode: %v", i, err)
		}
		if got.Err != want.Err {
			t.Fatalf("case %d: err = %d, want %d", i, got.Err, want.Err)
		}
		if len(got.Returns) != len(want.Returns) {
			t.Fatalf("case %d: return count = %d, want %d", i, len(got.Returns), len(want.Returns))
		}
		for j := range want.Returns {
			if !bytes.Equal(got.Returns[j], want.Returns[j]) {
				t.Fatalf("case %d: return %d = %q, want %q", i, j, got.Returns[j], want.Returns[j])
			}
		}
	}
}

func TestDecodeRequest_ParamCountMismatch(t *testing.T) {
	// ParamNum claims 2 but only one slot follows.
	payload := []byte("Command:2\r\nParamNum:2\r\n5\r\nhello\r\n")
	if _, err := rfscall.DecodeRequest(payload); !errors.Is(err, rfscall.ErrMalformedMessage) {
		t.Fatalf("err = %v, want ErrMalformedMessage", err)
	}
}

func TestDecodeRequest_SizeMismatch(t *testing.T) {
	// Declared size (10) exceeds the bytes actually present.
	payload := []byte("Command:2\r\nParamNum:1\r\n10\r\nhello\r\n")
	if _, err := rfscall.DecodeRequest(payload); !errors.Is(err, rfscall.ErrMalformedMessage) {
		t.Fatalf("err = %v, want ErrMalformedMessage", err)
	}
}

func TestDecodeRequest_MissingHeader(t *testing.T) {
	payload := []byte("ParamNum:0\r\n")
	if _, err := rfscall.DecodeRequest(payload); !errors.Is(err, rfscall.ErrMalformedMessage) {
		t.Fatalf("err = %v, want ErrMalformedMessage", err)
	}
}

func TestDecodeResponse_NonNumericErrno(t *testing.T) {
	payload := []byte("Errno:nope\r\nReturnNum:0\r\n")
	if _, err := rfscall.DecodeResponse(payload); !errors.Is(err, rfscall.ErrMalformedMessage) {
		t.Fatalf("err = %v, want ErrMalformedMessage", err)
	}
}

func TestSlotInt(t *testing.T) {
	v, err := rfscall.IntSlot(-42).Int()
	if err != nil {
		t.Fatalf("Int: %v", err)
	}
	if v != -42 {
		t.Fatalf("v = %d, want -42", v)
	}
}
