// File: services/intelligence/geminiClient.go
package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	referenceRepo "github.com/dietic/aliado-bot/database/repository/reference"
	"github.com/dietic/aliado-bot/models"
	"github.com/dietic/aliado-bot/utils"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	oracleTimeout = 5 * time.Second
	// The district candidate list is the requested district plus its
	// adjacency set.
	districtCandidates = 5
)

// GeminiOracle implements Oracle on top of the Gemini API, using
// enum-constrained JSON response schemas so the model can only answer with
// canonical slugs.
type GeminiOracle struct {
	classifyModel *genai.GenerativeModel
	cleanModel    *genai.GenerativeModel
	ref           referenceRepo.ReferenceRepository
}

func NewGeminiOracle(apiKey, modelName string, ref referenceRepo.ReferenceRepository) (*GeminiOracle, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	categoryEnum := &genai.Schema{Type: genai.TypeString, Enum: ref.CategorySlugs()}
	districtEnum := &genai.Schema{Type: genai.TypeString, Enum: ref.DistrictSlugs()}

	classifyModel := client.GenerativeModel(modelName)
	classifyModel.ResponseMIMEType = "application/json"
	classifyModel.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category": categoryEnum,
			"districts": {
				Type:        genai.TypeArray,
				Items:       districtEnum,
				Description: "Distrito solicitado primero, luego sus distritos aledaños.",
			},
			"message": {
				Type:        genai.TypeString,
				Description: "Solo si no hay category: una frase corta pidiendo aclaración.",
			},
		},
		Required: []string{"districts"},
	}
	classifyModel.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.TrimSpace(fmt.Sprintf(`
Eres Aliado, el bot de WhatsApp que enruta servicios en Lima Metropolitana.
Lee el pedido del usuario y responde JSON con:
 - category: uno de [%s]; omítelo si ningún servicio calza.
 - districts: array de longitud %d (distrito principal + distritos aledaños).`,
		strings.Join(ref.CategorySlugs(), ", "), districtCandidates)))}}

	cleanModel := client.GenerativeModel(modelName)
	cleanModel.ResponseMIMEType = "application/json"
	cleanModel.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name": {
				Type:        genai.TypeString,
				Description: "Nombre completo con errores de tipeo corregidos.",
			},
			"districts": {
				Type:        genai.TypeArray,
				Items:       districtEnum,
				Description: "Slugs de distritos válidos. Si no hay match, array vacío. No inventes.",
			},
			"services": {
				Type:        genai.TypeArray,
				Items:       categoryEnum,
				Description: "Slugs de servicio válidos. Si no hay match, array vacío. No inventes.",
			},
		},
		Required: []string{"name", "districts", "services"},
	}
	cleanModel.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.TrimSpace(`
You are a data cleaner. Correct typos and standardize the given JSON values.
Output only the corrected JSON object.`))}}

	return &GeminiOracle{classifyModel: classifyModel, cleanModel: cleanModel, ref: ref}, nil
}

func (g *GeminiOracle) Classify(ctx context.Context, text string) (*models.ClassificationResult, error) {
	raw, err := g.generate(ctx, g.classifyModel, text)
	if err != nil {
		return nil, &OracleError{Op: "classify", Err: err}
	}

	var parsed struct {
		Category  string   `json:"category"`
		Districts []string `json:"districts"`
		Message   string   `json:"message"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &OracleError{Op: "classify", Err: fmt.Errorf("unparseable response %q: %w", raw, err)}
	}

	result := &models.ClassificationResult{
		Category:  g.keepCategory(parsed.Category),
		Districts: g.keepDistricts(parsed.Districts),
		Message:   strings.TrimSpace(parsed.Message),
	}
	return result, nil
}

func (g *GeminiOracle) CleanDraft(ctx context.Context, draft models.Draft) (*models.CorrectedDraft, error) {
	payload, err := json.Marshal(map[string]string{
		"name":      draft.Name,
		"districts": draft.DistrictText,
		"services":  draft.ServiceText,
	})
	if err != nil {
		return nil, &OracleError{Op: "clean", Err: err}
	}

	raw, err := g.generate(ctx, g.cleanModel, string(payload))
	if err != nil {
		return nil, &OracleError{Op: "clean", Err: err}
	}

	var parsed struct {
		Name      string   `json:"name"`
		Districts []string `json:"districts"`
		Services  []string `json:"services"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &OracleError{Op: "clean", Err: fmt.Errorf("unparseable response %q: %w", raw, err)}
	}

	name := strings.TrimSpace(parsed.Name)
	if name == "" {
		name = strings.TrimSpace(draft.Name)
	}

	return &models.CorrectedDraft{
		Name:       name,
		Districts:  g.keepDistricts(parsed.Districts),
		Categories: g.keepCategories(parsed.Services),
	}, nil
}

// generate runs one prompt with a bounded timeout and a single retry on
// transient failure.
func (g *GeminiOracle) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, oracleTimeout)
		text, err := generateText(callCtx, model, prompt)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		utils.GetLogger().Warn("oracle call failed",
			zap.Int("attempt", attempt+1), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func generateText(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

// keepCategory drops anything outside the canonical set. The schema already
// constrains the model, but the contract is ours to enforce.
func (g *GeminiOracle) keepCategory(slug string) string {
	slug = utils.CanonicalSlug(slug)
	if slug == "" || !g.ref.HasCategory(slug) {
		return ""
	}
	return slug
}

func (g *GeminiOracle) keepCategories(slugs []string) []string {
	kept := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if c := g.keepCategory(s); c != "" {
			kept = append(kept, c)
		}
	}
	return kept
}

func (g *GeminiOracle) keepDistricts(slugs []string) []string {
	kept := make([]string, 0, len(slugs))
	for _, s := range slugs {
		s = utils.CanonicalSlug(s)
		if s != "" && g.ref.HasDistrict(s) {
			kept = append(kept, s)
		}
	}
	return kept
}
