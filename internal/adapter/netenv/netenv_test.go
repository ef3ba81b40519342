package netenv

import (
	"context"
	"testing"
)

func TestStubNetworkEnvironment_AlwaysEmpty(t *testing.T) {
	e := NewStubNetworkEnvironment()
	info, err := e.GetWPADInfo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.WPADOption != nil || len(info.Domains) != 0 {
		t.Errorf("got %+v, want empty WPADInfo", info)
	}
}
