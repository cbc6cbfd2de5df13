package studybuddy

import (
	"fmt"
	"strings"
)

// ChatSystemPrompt seeds every study conversation
const ChatSystemPrompt = "You are a helpful study assistant. Provide answers that are short, precise, and no longer than 2-3 sentences. " +
	"Avoid unnecessary elaboration or excessive detail in your responses."

// buildPrompt renders the generation instruction for the requested shape,
// embedding the study material and difficulty plus a worked example of the
// JSON object the model must return.
func buildPrompt(req GenerationRequest) string {
	switch req.Type {
	case TypeMultipleChoice:
		return buildMultipleChoicePrompt(req)
	case TypeFillBlank:
		return buildFillBlankPrompt(req)
	default:
		return buildSingleChoicePrompt(req)
	}
}

func promptHeader(sb *strings.Builder, kind string, req GenerationRequest) {
	sb.WriteString("You are an expert quiz generator.\n\n")
	fmt.Fprintf(sb, "Generate a %s %s question based ONLY on the following study material.\n\n", req.Difficulty, kind)
	sb.WriteString("Study material:\n")
	sb.WriteString(req.Topic)
	sb.WriteString("\n\n")
}

func buildSingleChoicePrompt(req GenerationRequest) string {
	var sb strings.Builder

	promptHeader(&sb, "multiple-choice", req)

	sb.WriteString("Rules:\n")
	sb.WriteString("- Do not introduce new concepts beyond the study material\n")
	sb.WriteString("- Focus on conceptual understanding\n")
	sb.WriteString("- Ensure exactly ONE correct answer\n\n")

	sb.WriteString("Return ONLY a JSON object with these exact fields:\n")
	sb.WriteString("- 'question': A clear, specific question\n")
	sb.WriteString("- 'options': An array of exactly 4 possible answers\n")
	sb.WriteString("- 'correct_answer': One of the options that is the correct answer\n\n")

	sb.WriteString("Example format:\n")
	sb.WriteString("{\n")
	sb.WriteString("    \"question\": \"What is the capital of France?\",\n")
	sb.WriteString("    \"options\": [\"London\", \"Berlin\", \"Paris\", \"Madrid\"],\n")
	sb.WriteString("    \"correct_answer\": \"Paris\"\n")
	sb.WriteString("}\n\n")

	sb.WriteString("Your response:")

	return sb.String()
}

func buildMultipleChoicePrompt(req GenerationRequest) string {
	var sb strings.Builder

	promptHeader(&sb, "multiple-answer", req)

	sb.WriteString("Rules:\n")
	sb.WriteString("- There may be one or more correct answers\n")
	sb.WriteString("- All correct answers must come from the options\n\n")

	sb.WriteString("Return ONLY a JSON object with these exact fields:\n")
	sb.WriteString("- 'question': A clear, specific question\n")
	sb.WriteString("- 'options': An array of 4 or more possible answers\n")
	sb.WriteString("- 'correct_answers': An array containing 1 or more correct answers from the options\n\n")

	sb.WriteString("Example format:\n")
	sb.WriteString("{\n")
	sb.WriteString("    \"question\": \"Which of the following are programming languages?\",\n")
	sb.WriteString("    \"options\": [\"Python\", \"HTML\", \"JavaScript\", \"Photoshop\"],\n")
	sb.WriteString("    \"correct_answers\": [\"Python\", \"JavaScript\"]\n")
	sb.WriteString("}\n\n")

	sb.WriteString("Your response:")

	return sb.String()
}

func buildFillBlankPrompt(req GenerationRequest) string {
	var sb strings.Builder

	promptHeader(&sb, "fill-in-the-blank", req)

	sb.WriteString("Rules:\n")
	sb.WriteString("- Use '____' for the blank\n")
	sb.WriteString("- Do not introduce new facts\n\n")

	sb.WriteString("Return ONLY a JSON object with these exact fields:\n")
	sb.WriteString("- 'question': A sentence with '____' marking where the blank should be\n")
	sb.WriteString("- 'answer': The correct word or phrase that belongs in the blank\n\n")

	sb.WriteString("Example format:\n")
	sb.WriteString("{\n")
	sb.WriteString("    \"question\": \"The capital of France is ____.\",\n")
	sb.WriteString("    \"answer\": \"Paris\"\n")
	sb.WriteString("}\n\n")

	sb.WriteString("Your response:")

	return sb.String()
}
