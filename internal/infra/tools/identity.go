package tools

import (
	"context"
	"encoding/json"
	"net/http"

	"paypalmcp/internal/domain"
	"paypalmcp/internal/infra/schema"
)

const createWebProfileSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 50},
    "temporary": {"type": "boolean"},
    "presentation": {
      "type": "object",
      "properties": {
        "brand_name": {"type": "string", "maxLength": 127},
        "logo_image": {"type": "string", "format": "uri"},
        "locale_code": {"type": "string", "pattern": "^[a-zA-Z]{2}(_[a-zA-Z]{2})?$"}
      }
    },
    "input_fields": {
      "type": "object",
      "properties": {
        "no_shipping": {"type": "integer", "minimum": 0, "maximum": 2},
        "address_override": {"type": "integer", "minimum": 0, "maximum": 1},
        "allow_note": {"type": "boolean"}
      }
    },
    "flow_config": {
      "type": "object",
      "properties": {
        "landing_page_type": {"type": "string", "enum": ["billing", "login"]},
        "bank_txn_pending_url": {"type": "string", "format": "uri"},
        "user_action": {"type": "string", "enum": ["commit", "continue"]}
      }
    }
  }
}`

const webProfileIDSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "string", "minLength": 1}
  }
}`

// Identity returns the identity and payment-experience tools. get_user_info
// and list_web_profiles carry no registered shape; their arguments pass
// through unvalidated.
func Identity() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		{
			Name:        "get_user_info",
			Description: "Show profile information for the authenticated account.",
			Handler:     getUserInfo,
		},
		{
			Name:        "create_web_profile",
			Description: "Create a web experience profile for checkout.",
			InputSchema: schema.MustParse(createWebProfileSchema),
			Handler:     createWebProfile,
		},
		{
			Name:        "list_web_profiles",
			Description: "List web experience profiles.",
			Handler:     listWebProfiles,
		},
		{
			Name:        "get_web_profile",
			Description: "Show details for a web experience profile by id.",
			InputSchema: schema.MustParse(webProfileIDSchema),
			Handler:     getWebProfile,
		},
		{
			Name:        "delete_web_profile",
			Description: "Delete a web experience profile.",
			InputSchema: schema.MustParse(webProfileIDSchema),
			Handler:     deleteWebProfile,
		},
	}
}

func getUserInfo(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodGet, "/v1/identity/oauth2/userinfo?schema=paypalv1.1", nil)
	if err != nil {
		return nil, remoteFailure("get_user_info", "failed to get user info", err)
	}
	return res, nil
}

func createWebProfile(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodPost, "/v1/payment-experience/web-profiles", args)
	if err != nil {
		return nil, remoteFailure("create_web_profile", "failed to create web experience profile", err)
	}
	return res, nil
}

func listWebProfiles(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodGet, "/v1/payment-experience/web-profiles", nil)
	if err != nil {
		return nil, remoteFailure("list_web_profiles", "failed to list web experience profiles", err)
	}
	return res, nil
}

func getWebProfile(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := api.Do(ctx, http.MethodGet, "/v1/payment-experience/web-profiles/"+id, nil)
	if err != nil {
		return nil, remoteFailure("get_web_profile", "failed to get web experience profile", err)
	}
	return res, nil
}

func deleteWebProfile(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := api.Do(ctx, http.MethodDelete, "/v1/payment-experience/web-profiles/"+id, nil)
	if err != nil {
		return nil, remoteFailure("delete_web_profile", "failed to delete web experience profile", err)
	}
	return res, nil
}
