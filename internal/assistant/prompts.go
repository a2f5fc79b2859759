package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amzmarine/crm/internal/crm/model"
)

// DefaultSystemPrompt is the chat persona used when ASSISTANT_SYSTEM_PROMPT is unset.
const DefaultSystemPrompt = `You are the logistics assistant of Amazon Marine, a freight forwarder operating from Egyptian ports.
Answer customer and staff questions about sea, land and air freight, customs clearance and shipment status.
Be concise and professional. Reply in the language of the question.
Never invent shipment data: only report what appears in the fleet status summary.`

const briefInstruction = `You are the "Amazon Marine Strategic Advisor".
Provide a professional, data-driven 3-sentence summary of current operations.
Mention growth trends or risks if visible in the data.`

const queryInstruction = "You are the data intelligence core. Answer concisely based on this CRM state: "

// FleetSummary renders one line per shipment for the chat context.
func FleetSummary(shipments []model.Shipment) string {
	if len(shipments) == 0 {
		return "No shipments currently in manifest."
	}
	lines := make([]string, len(shipments))
	for i, s := range shipments {
		cargo := s.CargoDescription
		if cargo == "" {
			cargo = "N/A"
		}
		lines[i] = fmt.Sprintf("[ID: %s, Customer: %s, Status: %s, ETA: %s, Route: %s->%s, Cargo: %s]",
			s.TrackingNumber, s.CustomerName, s.Status, s.ETA, s.Origin, s.Destination, cargo)
	}
	return strings.Join(lines, "\n")
}

func chatInstruction(base string, shipments []model.Shipment) string {
	if base == "" {
		base = DefaultSystemPrompt
	}
	return base + "\n\nLATEST FLEET STATUS SUMMARY:\n" + FleetSummary(shipments) +
		"\n\nIf the user asks for a specific tracking number, match it exactly against the IDs above."
}

func parseInstruction(salesReps []string) string {
	var b strings.Builder
	b.WriteString(`You are an expert Logistics Data Parser for a CRM system (Amazon Marine).
Analyze the unstructured text (emails, invoices, shipping documents) and extract the entity data into raw JSON.

STRICT SHIPPING LINE RULES:
1. Normalize the found shipping line to match EXACTLY one of the values in the ALLOWED LIST below.
2. If the found shipping line is a variation (e.g. "CMA CGM" or "Maersk Line"), map it to the closest match.
3. If no shipping line is found, set shippingLine.value to null.
4. ALLOWED LIST: `)
	b.WriteString(strings.Join(model.OfficialShippingLines, ", "))
	b.WriteString(`

FINANCIAL EXTRACTION RULES:
1. Extract inland freight cost as inlandFreight.
2. Extract "Genset" related costs as gensetCost.
3. Extract "Official Receipts" or "Government Fees" as officialReceipts.
4. Extract "Overnight" or "Driver Stay" fees as overnightStay.
5. Extract any other miscellaneous fees as otherExpenses.

OTHER RULES:
1. Dates MUST be YYYY-MM-DD.
2. Currency MUST be USD or EGP.
3. Extract the Bill of Lading (B/L) number if present.`)
	if len(salesReps) > 0 {
		b.WriteString("\n4. salesRep must be one of: ")
		b.WriteString(strings.Join(salesReps, ", "))
		b.WriteString(", or omitted.")
	}
	return b.String()
}

type crmState struct {
	Leads     []model.Lead     `json:"leads"`
	Shipments []model.Shipment `json:"shipments"`
}

func stateJSON(leads []model.Lead, shipments []model.Shipment) (string, error) {
	if leads == nil {
		leads = []model.Lead{}
	}
	if shipments == nil {
		shipments = []model.Shipment{}
	}
	b, err := json.Marshal(crmState{Leads: leads, Shipments: shipments})
	if err != nil {
		return "", fmt.Errorf("failed to encode CRM state: %w", err)
	}
	return string(b), nil
}
