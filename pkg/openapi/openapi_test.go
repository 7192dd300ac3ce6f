package openapi

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const petstore = `{
  "openapi": "3.0.3",
  "info": {"title": "Pets", "version": "1.0.0"},
  "paths": {
    "/pets": {
      "post": {
        "operationId": "createPet",
        "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Pet"}}}},
        "responses": {"201": {"description": "created"}}
      },
      "get": {
        "responses": {"200": {"description": "ok"}}
      }
    }
  },
  "components": {
    "schemas": {
      "Pet": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "age": {"type": "integer", "minimum": 0, "exclusiveMinimum": true},
          "nickname": {"type": "string", "nullable": true},
          "owner": {"$ref": "#/components/schemas/Owner"}
        }
      },
      "Owner": {
        "type": "object",
        "properties": {
          "email": {"type": "string", "format": "email"}
        }
      }
    }
  }
}`

func TestComponents_ListsSortedNames(t *testing.T) {
	t.Parallel()

	names, err := Components(context.Background(), []byte(petstore))
	if err != nil {
		t.Fatalf("Components: %v", err)
	}
	if diff := cmp.Diff([]string{"Owner", "Pet"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaFromComponents_TranslatesKeywords(t *testing.T) {
	t.Parallel()

	node, err := SchemaFromComponents(context.Background(), []byte(petstore), "Pet")
	if err != nil {
		t.Fatalf("SchemaFromComponents: %v", err)
	}
	if !node.IsObject() || !node.IsRequired("name") {
		t.Fatalf("unexpected root: %+v", node)
	}
	if diff := cmp.Diff([]string{"age", "name", "nickname", "owner"}, node.PropertyNames()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}

	age := node.Properties["age"]
	if age.ExclusiveMinimum == nil || *age.ExclusiveMinimum != 0 || age.Minimum != nil {
		t.Fatalf("exclusive bound not translated: min=%v exclusive=%v", age.Minimum, age.ExclusiveMinimum)
	}
	if nick := node.Properties["nickname"]; nick.Type != "string" || !nick.Nullable {
		t.Fatalf("nullable not translated: %+v", nick)
	}
	owner := node.Properties["owner"]
	if !owner.IsObject() || owner.Properties["email"] == nil || owner.Properties["email"].Format != "email" {
		t.Fatalf("component reference not expanded: %+v", owner)
	}
	if _, ok := node.Raw()["$defs"]; !ok {
		t.Fatalf("expected $defs in the raw schema")
	}
}

func TestSchemaForOperation(t *testing.T) {
	t.Parallel()

	node, err := SchemaForOperation(context.Background(), []byte(petstore), "createPet")
	if err != nil {
		t.Fatalf("SchemaForOperation: %v", err)
	}
	if node.Properties["name"] == nil {
		t.Fatalf("expected the Pet schema, got %+v", node)
	}

	if _, err := SchemaForOperation(context.Background(), []byte(petstore), "get:/pets"); !errors.Is(err, ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}
	if _, err := SchemaForOperation(context.Background(), []byte(petstore), "deletePet"); !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestSchemaFromComponents_Errors(t *testing.T) {
	t.Parallel()

	if _, err := SchemaFromComponents(context.Background(), []byte(petstore), "Missing"); !errors.Is(err, ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got %v", err)
	}
	if _, err := SchemaFromComponents(context.Background(), []byte("{"), "Pet"); err == nil {
		t.Fatalf("expected a load error for malformed input")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := SchemaFromComponents(ctx, []byte(petstore), "Pet"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
