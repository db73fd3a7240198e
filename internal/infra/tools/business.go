package tools

import (
	"context"
	"encoding/json"
	"net/http"

	"paypalmcp/internal/domain"
	"paypalmcp/internal/infra/schema"
)

const createProductSchema = `{
  "type": "object",
  "required": ["name", "type"],
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 127},
    "description": {"type": "string", "maxLength": 256},
    "type": {"type": "string", "enum": ["PHYSICAL", "DIGITAL", "SERVICE"]},
    "category": {"type": "string"},
    "image_url": {"type": "string", "format": "uri"},
    "home_url": {"type": "string", "format": "uri"}
  }
}`

const createPlanSchema = `{
  "type": "object",
  "required": ["product_id", "name", "billing_cycles", "payment_preferences"],
  "properties": {
    "product_id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1, "maxLength": 127},
    "description": {"type": "string", "maxLength": 127},
    "status": {"type": "string", "enum": ["CREATED", "ACTIVE", "INACTIVE"]},
    "billing_cycles": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["frequency", "tenure_type", "sequence"],
        "properties": {
          "frequency": {
            "type": "object",
            "required": ["interval_unit"],
            "properties": {
              "interval_unit": {"type": "string", "enum": ["DAY", "WEEK", "MONTH", "YEAR"]},
              "interval_count": {"type": "integer", "minimum": 1}
            }
          },
          "tenure_type": {"type": "string", "enum": ["REGULAR", "TRIAL"]},
          "sequence": {"type": "integer", "minimum": 1},
          "total_cycles": {"type": "integer", "minimum": 0},
          "pricing_scheme": {
            "type": "object",
            "properties": {
              "fixed_price": {
                "type": "object",
                "required": ["currency_code", "value"],
                "properties": {
                  "currency_code": {"type": "string", "pattern": "^[A-Z]{3}$"},
                  "value": {"type": "string", "pattern": "^\\d+(\\.\\d{1,2})?$"}
                }
              }
            }
          }
        }
      }
    },
    "payment_preferences": {
      "type": "object",
      "properties": {
        "auto_bill_outstanding": {"type": "boolean"},
        "setup_fee_failure_action": {"type": "string", "enum": ["CONTINUE", "CANCEL"]},
        "payment_failure_threshold": {"type": "integer", "minimum": 0}
      }
    },
    "taxes": {
      "type": "object",
      "properties": {
        "percentage": {"type": "string", "pattern": "^\\d+(\\.\\d+)?$"},
        "inclusive": {"type": "boolean"}
      }
    }
  }
}`

const createSubscriptionSchema = `{
  "type": "object",
  "required": ["plan_id"],
  "properties": {
    "plan_id": {"type": "string", "minLength": 1},
    "quantity": {"type": "string", "pattern": "^\\d+$"},
    "custom_id": {"type": "string"},
    "start_time": {"type": "string", "format": "date-time"},
    "subscriber": {
      "type": "object",
      "properties": {
        "email_address": {"type": "string", "format": "email"},
        "name": {
          "type": "object",
          "properties": {
            "given_name": {"type": "string"},
            "surname": {"type": "string"}
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
        "user_action": {"type": "string", "enum": ["CONTINUE", "SUBSCRIBE_NOW"]}
      }
    }
  }
}`

const subscriptionIDSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "string", "minLength": 1}
  }
}`

const cancelSubscriptionSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "reason": {"type": "string", "maxLength": 128}
  }
}`

const createInvoiceSchema = `{
  "type": "object",
  "required": ["detail"],
  "properties": {
    "detail": {
      "type": "object",
      "required": ["currency_code"],
      "properties": {
        "currency_code": {"type": "string", "pattern": "^[A-Z]{3}$"},
        "invoice_number": {"type": "string"},
        "invoice_date": {"type": "string"},
        "note": {"type": "string", "maxLength": 4000},
        "term": {"type": "string"},
        "memo": {"type": "string"}
      }
    },
    "invoicer": {
      "type": "object",
      "properties": {
        "name": {
          "type": "object",
          "properties": {
            "given_name": {"type": "string"},
            "surname": {"type": "string"}
          }
        },
        "email_address": {"type": "string", "format": "email"},
        "website": {"type": "string", "format": "uri"}
      }
    },
    "primary_recipients": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "billing_info": {
            "type": "object",
            "properties": {
              "email_address": {"type": "string", "format": "email"},
              "name": {
                "type": "object",
                "properties": {
                  "given_name": {"type": "string"},
                  "surname": {"type": "string"}
                }
              }
            }
          }
        }
      }
    },
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "quantity", "unit_amount"],
        "properties": {
          "name": {"type": "string", "minLength": 1, "maxLength": 200},
          "description": {"type": "string", "maxLength": 1000},
          "quantity": {"type": "string", "pattern": "^\\d+(\\.\\d+)?$"},
          "unit_amount": {
            "type": "object",
            "required": ["currency_code", "value"],
            "properties": {
              "currency_code": {"type": "string", "pattern": "^[A-Z]{3}$"},
              "value": {"type": "string", "pattern": "^\\d+(\\.\\d{1,2})?$"}
            }
          }
        }
      }
    }
  }
}`

const productIDSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "string", "minLength": 1}
  }
}`

const invoiceIDSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "string", "minLength": 1}
  }
}`

const sendInvoiceSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "subject": {"type": "string", "maxLength": 4000},
    "note": {"type": "string", "maxLength": 4000},
    "send_to_invoicer": {"type": "boolean"},
    "send_to_recipient": {"type": "boolean"}
  }
}`

// Business returns the catalog, subscription and invoicing tools.
func Business() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		{
			Name:        "create_product",
			Description: "Create a product in the catalog.",
			InputSchema: schema.MustParse(createProductSchema),
			Handler:     createProduct,
		},
		{
			Name:        "list_products",
			Description: "List products, optionally paginated with page and page_size.",
			Handler:     listProducts,
		},
		{
			Name:        "show_product",
			Description: "Show details for a product by id.",
			InputSchema: schema.MustParse(productIDSchema),
			Handler:     showProduct,
		},
		{
			Name:        "create_subscription_plan",
			Description: "Create a billing plan for an existing product.",
			InputSchema: schema.MustParse(createPlanSchema),
			Handler:     createSubscriptionPlan,
		},
		{
			Name:        "list_subscription_plans",
			Description: "List billing plans.",
			Handler:     listSubscriptionPlans,
		},
		{
			Name:        "create_subscription",
			Description: "Create a subscription to a billing plan.",
			InputSchema: schema.MustParse(createSubscriptionSchema),
			Handler:     createSubscription,
		},
		{
			Name:        "show_subscription",
			Description: "Show details for a subscription by id.",
			InputSchema: schema.MustParse(subscriptionIDSchema),
			Handler:     showSubscription,
		},
		{
			Name:        "cancel_subscription",
			Description: "Cancel a subscription with an optional reason.",
			InputSchema: schema.MustParse(cancelSubscriptionSchema),
			Handler:     cancelSubscription,
		},
		{
			Name:        "create_invoice",
			Description: "Create a draft invoice.",
			InputSchema: schema.MustParse(createInvoiceSchema),
			Handler:     createInvoice,
		},
		{
			Name:        "list_invoices",
			Description: "List invoices.",
			Handler:     listInvoices,
		},
		{
			Name:        "get_invoice",
			Description: "Show details for an invoice by id.",
			InputSchema: schema.MustParse(invoiceIDSchema),
			Handler:     getInvoice,
		},
		{
			Name:        "send_invoice",
			Description: "Send a draft invoice to its recipients.",
			InputSchema: schema.MustParse(sendInvoiceSchema),
			Handler:     sendInvoice,
		},
	}
}

func createProduct(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodPost, "/v1/catalogs/products", args)
	if err != nil {
		return nil, remoteFailure("create_product", "failed to create product", err)
	}
	return res, nil
}

func listProducts(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodGet, "/v1/catalogs/products"+pageQuery(args), nil)
	if err != nil {
		return nil, remoteFailure("list_products", "failed to list products", err)
	}
	return res, nil
}

func showProduct(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := api.Do(ctx, http.MethodGet, "/v1/catalogs/products/"+id, nil)
	if err != nil {
		return nil, remoteFailure("show_product", "failed to show product details", err)
	}
	return res, nil
}

func createSubscriptionPlan(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodPost, "/v1/billing/plans", args)
	if err != nil {
		return nil, remoteFailure("create_subscription_plan", "failed to create subscription plan", err)
	}
	return res, nil
}

func listSubscriptionPlans(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodGet, "/v1/billing/plans"+pageQuery(args), nil)
	if err != nil {
		return nil, remoteFailure("list_subscription_plans", "failed to list subscription plans", err)
	}
	return res, nil
}

func createSubscription(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodPost, "/v1/billing/subscriptions", args)
	if err != nil {
		return nil, remoteFailure("create_subscription", "failed to create subscription", err)
	}
	return res, nil
}

func showSubscription(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := api.Do(ctx, http.MethodGet, "/v1/billing/subscriptions/"+id, nil)
	if err != nil {
		return nil, remoteFailure("show_subscription", "failed to show subscription details", err)
	}
	return res, nil
}

func cancelSubscription(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "id")
	if err != nil {
		return nil, err
	}
	body := bodyWithout(args, "id")
	res, err := api.Do(ctx, http.MethodPost, "/v1/billing/subscriptions/"+id+"/cancel", body)
	if err != nil {
		return nil, remoteFailure("cancel_subscription", "failed to cancel subscription", err)
	}
	return res, nil
}

func createInvoice(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodPost, "/v2/invoicing/invoices", args)
	if err != nil {
		return nil, remoteFailure("create_invoice", "failed to create invoice", err)
	}
	return res, nil
}

func listInvoices(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	res, err := api.Do(ctx, http.MethodGet, "/v2/invoicing/invoices"+pageQuery(args), nil)
	if err != nil {
		return nil, remoteFailure("list_invoices", "failed to list invoices", err)
	}
	return res, nil
}

func getInvoice(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := api.Do(ctx, http.MethodGet, "/v2/invoicing/invoices/"+id, nil)
	if err != nil {
		return nil, remoteFailure("get_invoice", "failed to get invoice details", err)
	}
	return res, nil
}

func sendInvoice(ctx context.Context, api domain.Invoker, args map[string]any) (json.RawMessage, error) {
	id, err := pathArg(args, "id")
	if err != nil {
		return nil, err
	}
	body := bodyWithout(args, "id")
	res, err := api.Do(ctx, http.MethodPost, "/v2/invoicing/invoices/"+id+"/send", body)
	if err != nil {
		return nil, remoteFailure("send_invoice", "failed to send invoice", err)
	}
	return res, nil
}
