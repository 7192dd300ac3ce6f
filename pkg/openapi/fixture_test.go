package openapi_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/openapi"
	"github.com/goliatone/go-schemaform/pkg/testsupport"
)

func TestSchemaForOperation_DrivesAForm(t *testing.T) {
	t.Parallel()

	raw := testsupport.OpenAPIBytes(t, testsupport.Petstore)
	node, err := openapi.SchemaForOperation(context.Background(), raw, "post:/pets")
	if err != nil {
		t.Fatalf("SchemaForOperation: %v", err)
	}

	f := form.New[string](nil)
	if err := f.Load(node, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.SetValue("species", "cat"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	res := f.Validate()
	if res.Valid || len(res.ErrorsAt(testsupport.Path(t, "name"))) != 1 {
		t.Fatalf("expected a required error at name, got %+v", res.Errors)
	}

	if err := f.SetValue("name", "Tom"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if res := f.Validate(); !res.Valid {
		t.Fatalf("expected valid data, got %+v", res.Errors)
	}
}
