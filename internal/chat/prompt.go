package chat

import (
	"fmt"
	"strings"

	"github.com/dhruvbhatia/bizdesk-backend/internal/rag"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/db/models"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
)

const adminSystemInstruction = "You are an expert advisor for micro, small and medium enterprises (MSMEs). " +
	"You help business administrators with compliance, regulations, licensing, taxation and general " +
	"business management questions. Base your answers on the provided context when it is relevant. " +
	"If the context does not cover the question, say so and answer from general knowledge, clearly " +
	"marking which parts are not backed by the uploaded documents."

const shopSystemInstruction = "You are a friendly customer service assistant for a small retail shop. " +
	"You help shop owners answer questions about their products, policies and day-to-day operations. " +
	"Base your answers on the provided context when it is relevant. Keep answers short, practical and " +
	"polite. If you do not know the answer from the context, say so instead of guessing."

const inventorySystemInstruction = "You are an inventory analyst for a small business. Answer questions " +
	"using only the inventory table provided in the prompt. Be precise with quantities and prices. " +
	"If the table does not contain enough information to answer, say so."

const schemaSystemInstruction = "You are a data analyst. You are shown the header row and a few sample " +
	"rows of a CSV file that was just imported into an inventory system. Briefly describe what each " +
	"column appears to contain and point out anything unusual, such as missing values or suspicious " +
	"formats. Keep it under 150 words."

// advisoryNote is appended to inventory answers when the question looks
// like a request to change data, since the assistant can only read.
const advisoryNote = "Note: I can only read the inventory. To make changes, use the inventory endpoints or the dashboard."

// modificationKeywords flag questions that ask for a data change rather
// than a lookup.
var modificationKeywords = []string{
	"add", "insert", "create", "update", "change", "modify", "edit",
	"delete", "remove", "set", "increase", "decrease", "restock",
}

// systemInstructionFor selects the assistant persona for a role.
func systemInstructionFor(role enums.Role) string {
	if role == enums.RoleAdmin {
		return adminSystemInstruction
	}
	return shopSystemInstruction
}

// buildDocumentPrompt assembles retrieved chunks and the question into a
// single prompt for the generation model.
func buildDocumentPrompt(results []rag.Result, question string) string {
	var sb strings.Builder
	if len(results) > 0 {
		sb.WriteString("Context:\n")
		for i, result := range results {
			sb.WriteString(fmt.Sprintf("[%d] %s\n\n", i+1, strings.TrimSpace(result.Chunk.Text)))
		}
	} else {
		sb.WriteString("Context: no documents have been uploaded yet.\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(strings.TrimSpace(question))
	return sb.String()
}

// buildInventoryPrompt renders the inventory as a plain text table
// followed by the question.
func buildInventoryPrompt(items []models.InventoryItem, question string) string {
	var sb strings.Builder
	if len(items) == 0 {
		sb.WriteString("Inventory: empty.\n\n")
	} else {
		sb.WriteString("Inventory:\n")
		sb.WriteString("product_name | quantity | unit_price | category | description\n")
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("%s | %d | %s | %s | %s\n",
				item.ProductName, item.Quantity, item.UnitPrice.StringFixed(2), item.Category, item.Description))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(strings.TrimSpace(question))
	return sb.String()
}

// buildSchemaPrompt renders a CSV header and sample rows for analysis.
func buildSchemaPrompt(header []string, samples [][]string) string {
	var sb strings.Builder
	sb.WriteString("Header: ")
	sb.WriteString(strings.Join(header, ", "))
	sb.WriteString("\nSample rows:\n")
	for _, row := range samples {
		sb.WriteString(strings.Join(row, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// wantsModification reports whether the question appears to ask for a
// data change.
func wantsModification(question string) bool {
	for _, field := range strings.Fields(strings.ToLower(question)) {
		word := strings.Trim(field, ".,!?;:\"'")
		for _, keyword := range modificationKeywords {
			if word == keyword {
				return true
			}
		}
	}
	return false
}
