// prompts.go - Centralized prompt templates for the pipeline's model calls

package ai

import "fmt"

// RecognitionPrompt is the fixed single-turn instruction sent with the image.
const RecognitionPrompt = "What text do you see in this image?"

// ExtractionSystemPrompt frames the text model as a medical-document field
// extractor.
const ExtractionSystemPrompt = "You are a helpful assistant that extracts specific information from medical documents. " +
	"You always answer with a single JSON object and nothing else."

// BuildExtractionUserPrompt asks for the five appointment fields as JSON,
// with null for anything the text does not contain.
func BuildExtractionUserPrompt(recognizedText string) string {
	return fmt.Sprintf(`From the following text, extract the appointment date, time, location, medical department, and doctor's name.

Respond with a JSON object with exactly these keys: date, time, location, department, doctor.
Use "YYYY-MM-DD" for date and "HH:MM" (24-hour) for time when possible.
If any piece of information is not present in the text, use null for that key.

Here's the text:

%s`, recognizedText)
}
