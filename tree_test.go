package rfscall_test

import (
	"errors"
	"reflect"
	"testing"

	"code.duskforge.dev/rfscall"
)

func TestTreeRoundTrip(t *testing.T) {
	tree := &rfscall.Node{
		Name: "tmp",
		Children: []*rfscall.Node{
			{Name: "a.txt"},
			{Name: "sub", Children: []*rfscall.Node{
				{Name: "x"},
			}},
		},
	}

	payload, err := rfscall.EncodeTree(tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := rfscall.DecodeTree(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, tree) {
		t.Fatalf("got %#v, want %#v", got, tree)
	}
}

func TestTreeRoundTrip_Leaf(t *testing.T) {
	leaf := &rfscall.Node{Name: "a.txt"}
	payload, err := rfscall.EncodeTree(leaf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := rfscall.DecodeTree(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "a.txt" || len(got.Children) != 0 {
		t.Fatalf("got %#v", got)
	}
}

func TestEncodeTree_NameWithLineTerminator_Rejected(t *testing.T) {
	tree := &rfscall.Node{Name: "bad\r\nname"}
	_, err := rfscall.EncodeTree(tree)
	if !errors.Is(err, rfscall.ErrMalformedArgument) {
		t.Fatalf("err = %v, want ErrMalformedArgument", err)
	}
}

func TestEncodeTree_NameWithLineTerminatorInChild_Rejected(t *testing.T) {
	tree := &rfscall.Node{
		Name: "tmp",
		Children: []*rfscall.Node{
			{Name: "bad\r\nname"},
		},
	}
	_, err := rfscall.EncodeTree(tree)
	if !errors.Is(err, rfscall.ErrMalformedArgument) {
		t.Fatalf("err = %v, want ErrMalformedArgument", err)
	}
}

func TestDecodeTree_TruncatedChildList(t *testing.T) {
	// ChildNum claims 2 children but only one follows.
	payload := []byte("NodeName:tmp\r\nChildNum:2\r\nNodeName:a\r\nChildNum:0\r\n")
	if _, err := rfscall.DecodeTree(payload); !errors.Is(err, rfscall.ErrMalformedMessage) {
		t.Fatalf("err = %v, want ErrMalformedMessage", err)
	}
}

func TestDecodeTree_MissingChildNum(t *testing.T) {
	payload := []byte("NodeName:tmp\r\n")
	if _, err := rfscall.DecodeTree(payload); !errors.Is(err, rfscall.ErrMalformedMessage) {
		t.Fatalf("err = %v, want ErrMalformedMessage", err)
	}
}
