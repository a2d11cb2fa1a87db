package analyzer

// BuildLabReportPrompt returns the extraction prompt for medical lab reports.
// The JSON shape it requests is exactly what the repair pipeline's analysis
// schema validates; keep the two in sync when changing either.
func BuildLabReportPrompt() string {
	return `You are a medical data analyst. Analyze the provided lab report and extract structured information.

Respond with ONLY a valid JSON object in this exact format:
{
  "patientInfo": {
    "id": "extracted_or_generated_id",
    "name": "Patient Name",
    "age": age_number_or_null,
    "gender": "male/female/other or null",
    "dateOfBirth": "YYYY-MM-DD or null",
    "lastTestDate": "YYYY-MM-DD"
  },
  "latestResults": [
    {
      "testName": "Test Name",
      "result": numeric_value_or_string_or_null,
      "unit": "unit",
      "flag": "high/low/normal",
      "referenceRange": {"min": min_value, "max": max_value},
      "date": "YYYY-MM-DD",
      "category": "blood/lipid/liver/kidney/metabolic"
    }
  ],
  "testCategories": [
    {
      "categoryName": "Category Name",
      "tests": [ same result objects as latestResults ]
    }
  ]
}

IMPORTANT INSTRUCTIONS:
1. Extract patient information from the report header
2. Find every test result with its value, unit, and reference range
3. Set "flag" from the reference range (high/low/normal)
4. Categorize tests into: blood, lipid, liver, kidney, or metabolic
5. Use realistic reference ranges for medical tests
6. Return ONLY valid JSON, no additional text, no markdown formatting, no code fences
7. If information is missing, use null`
}
