package tools

import (
	"context"
	"encoding/json"
	"net/http"

	"paypalmcp/internal/domain"
	"paypalmcp/internal/infra/schema"
)

const createOrderSchema = `{
  "type": "object",
  "required": ["intent", "purchase_units"],
  "properties": {
    "intent": {"type": "string", "enum": ["CAPTURE", "AUTHORIZE"]},
    "purchase_units": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["amount"],
        "properties": {
          "reference_id": {"type": "string"},
          "description": {"type": "string", "maxLength": 127},
          "custom_id": {"type": "string"},
          "invoice_id": {"type": "string"},
          "amount": {
            "type": "object",
            "required": ["currency_code", "value"],
            "properties": {
              "currency_code": {"type": "string", "pattern": "^[A-Z]{3}$"},
              "value": {"type": "string", "pattern": "^\\d+(\\.\\d{1,2})?$"}
            }
          },
          "payee": {
            "type": "object",
            "properties": {
              "email_address": {"type": "string", "format": "email"},
              "merchant_id": {"type": "string"}
            }
          }
        }
      }
    },
    "application_context": {
      "type": "object",
      "properties": {
        "brand_name": {"type": "string"},
        "locale": {"type": "string"},
        "return_url": {"type": "string", "format": "uri"},
        "cancel_url": {"type": "string", "format": "uri"},
        "user_action": {"type": "string", "enum": ["CONTINUE", "PAY_NOW"]}
      }
    }
  }
}`

const orderIDSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "string", "minLength": 1}
  }
}`

const refundCaptureSchema = `{
  "type": "object",
  "required": ["capture_id"],
  "properties": {
    "capture_id": {"type": "string", "minLength": 1},
    "note_to_payer": {"type": "string", "maxLength": 255},
    "invoice_id": {"type": "string"},
    "amount": {
      "type": "object",
      "required": ["currency_code", "value"],
      "properties": {
        "currency_code": {"type": "string", "pattern": "^[A-Z]{3}$"},
        "value": {"type": "string", "pattern": "^\\d+(\\.\\d{1,2})?$"}
      }
    }
  }
}`

const createPayoutSchema = `{
  "type": "object",
  "required": ["sender_batch_header", "items"],
  "properties": {
    "sender_batch_header": {
      "type": "object",
      "properties": {
        "sender_batch_id": {"type": "string"},
        "email_subject": {"type": "string", "maxLength": 255},
        "email_message": {"type": "string"}
      }
    },
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["amount", "receiver"],
        "properties": {
          "recipient_type": {"type": "string", "enum": ["EMAIL", "PHONE", "PAYPAL_ID"]},
          "amount": {
            "type": "object",
            "required": ["currency", "value"],
            "properties": {
              "currency": {"type": "string", "pattern": "^[A-Z]{3}$"},
              "value": {"type": "string", "pattern": "^\\d+(\\.\\d{1,2})?$"}
            }
          },
          "receiver": {"type": "string", "minLength": 1},
          "note": {"type": "string"},
          "sender_item_id": {"type": "string"}
        }
      }
    }
  }
}`

const payoutIDSchema = `{
  "type": "object",
  "required": ["payout_batch_id"],
  "properties": {
    "payout_batch_id": {"type": "string", "minLength": 1}
  }
}`

// Payments returns the order, capture and payout tools.
func Payments() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		{
			Name:        "create_order",
			Description: "Create an order with one or more purchase units.",
			InputSchema: schema.MustParse(createOrderSchema),
			Handler:     createOrder,
		},
		{
			Name:        "get_order",
			Description: "Show details for an order by id.",
			InputSchema: schema.MustParse(orderIDSchema),
			Handler:     getOrder,
		},
		{
			Name:        "capture_order",
			Description: "Capture payment for an approved order.",
			InputSchema: schema.MustParse(orderIDSchema),
			Handler:     captureOrder,
		},
		{
			Name:        "refund_capture",
			Description: "Refund a captured payment, fully or partially.",
			InputSchema: schema.MustParse(refundCaptureSchema),
			Handler:     refundCapture,
		},
		{
			Name:        "create_payout",
			Description: "Create a batch payout to one or more receivers.",
			InputSchema: schema.MustParse(createPayoutSchema),
			Handler:     createPayout,
		},
		{
			Name:        "get_payout",
			Description: "Show the status of a payout batch.",
			InputSchema: schema.MustParse(payoutIDSchema),
			Handler:     getPayout,
		},
	}
}

func createOrder(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodPost, "/v2/checkout/orders", args)
	if err != nil {
		return nil, remoteFailure("create_order", "failed to create order", err)
	}
	return res, nil
}

func getOrder(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := api.Do(ctx, http.MethodGet, "/v2/checkout/orders/"+id, nil)
	if err != nil {
		return nil, remoteFailure("get_order", "failed to get order details", err)
	}
	return res, nil
}

func captureOrder(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := api.Do(ctx, http.MethodPost, "/v2/checkout/orders/"+id+"/capture", nil)
	if err != nil {
		return nil, remoteFailure("capture_order", "failed to capture order", err)
	}
	return res, nil
}

func refundCapture(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "capture_id")
	if err != nil {
		return nil, err
	}
	body := bodyWithout(args, "capture_id")
	res, err := api.Do(ctx, http.MethodPost, "/v2/payments/captures/"+id+"/refund", body)
	if err != nil {
		return nil, remoteFailure("refund_capture", "failed to refund capture", err)
	}
	return res, nil
}

func createPayout(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodPost, "/v1/payments/payouts", args)
	if err != nil {
		return nil, remoteFailure("create_payout", "failed to create payout", err)
	}
	return res, nil
}

func getPayout(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "payout_batch_id")
	if err != nil {
		return nil, err
	}
	res, err := api.Do(ctx, http.MethodGet, "/v1/payments/payouts/"+id, nil)
	if err != nil {
		return nil, remoteFailure("get_payout", "failed to get payout status", err)
	}
	return res, nil
}
