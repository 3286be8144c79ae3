package profile

import "strings"

func DefaultCompanyConfig() CompanyConfig {
	return CompanyConfig{
		CompanyName: "ArchTools",
		Tone:        ToneInnovative,
		WebsiteURL:  "https://www.behance.net/gabrielcostabenetti",
		Context:     strings.TrimSpace(defaultKnowledgeBase),
	}
}

const defaultKnowledgeBase = `
ABOUT ARCHTOOLS:
ArchTools is a complete ecosystem of visual and technological solutions for the real estate and construction market.
We do not just sell "3D images"; we deliver strategic tools that speed up sales, reduce marketing costs and strengthen developer brands.

OUR SOLUTIONS:
1. Ultra-realistic renders & concept art: high impact images for pre-launches and competitions.
2. Humanized floor plans: didactic and aesthetic layouts the end buyer understands.
3. Cinematic videos: visual storytelling that creates desire before construction starts.
4. 360 virtual tours & VR: full immersion that replaces or complements the physical show apartment.
5. Interactive projects (sales apps): gamified applications where the buyer swaps finishes, sees the drone view and explores the development.

PROVEN BENEFITS (MARKET DATA & KPIS):
- Conversion: visual tools raise lead-to-sale conversion between 15% and 25%.
- Faster sales: average 20% reduction of the sales cycle.
- Marketing savings: up to 30% lower promotional costs by replacing physical models and stands with digital assets.

TECHNICAL GUIDELINES AND QUALITY STANDARD:
1. 3DS MAX & CORONA RENDERER PRODUCTION FLOW:
   - Lighting: high dynamic range HDRI for natural global illumination, Corona Lights for artificial highlights, LightMix for intensity and colour temperature tuning in post-production without re-rendering.
   - Modelling: clean quad-based topology; Corona Scatter for complex vegetation and realistic grass without exhausting memory.
   - Shading: 100% PBR workflow. Albedo, glossiness, reflection, correct IOR (glass 1.52, water 1.33) and displacement/normal maps.
   - Render composition: photographic LUTs for colour grading and the Corona Image Editor for bloom & glare.

2. UNREAL ENGINE 5 FOR ARCHVIZ (REAL TIME & INTERACTIVITY):
   - Lumen for real-time global illumination and reflections, no light baking, instant time-of-day changes.
   - Nanite for very high polygon models (photogrammetry, scans) without performance loss.
   - Datasmith for a direct Revit/Sketchup to Unreal flow keeping project measurements.
   - Blueprints for interactions (open doors, switch lights, swap floors) in the sales apps.

3. PHOTOGRAPHY & COMPOSITION:
   - Framing: rule of thirds, leading lines towards the focal point, symmetry for classic spaces.
   - Physical cameras (ISO, shutter speed, f-stop). Wide lenses (16mm-24mm) for small interiors and facades; tele lenses (50mm-85mm) for details with less perspective distortion.
   - Perspective correction: Automatic Vertical Tilt keeps verticals straight (2-point perspective).

4. ANIMATION & CINEMATOGRAPHY:
   - Smooth, intentional camera moves (dolly, pan, tilt); no abrupt moves that cause VR sickness.
   - 30fps for standard videos, 60fps for interactive experiences.
   - Scripted storytelling: context (drone), the human experience inside, then finishing details.

SERVICE CAPABILITY (DIAGNOSIS):
Before quoting we investigate the project stage, the buyer profile (investor or resident) and the "soul" of the project (sophisticated, family, minimalist).

PRIORITY AUDIENCE:
- Builders and developers (main focus).
- Architects of high-end projects.
- Qualified real estate leads.
`
