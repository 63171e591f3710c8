package extractor

// schemaInstructions describes the only JSON shape the model may return.
const schemaInstructions = `{
  "type": "스킵",
  "groups": [
    {
      "items": ["<start_col>"],
      "rule": {
        "type": "skip",
        "start_col": "<선택지가 있는 문항ID>",
        "value": ["<선택지 코드+텍스트, 예: ② 없음>"],
        "end_col": "<이동 대상 문항ID>",
        "note": "<근거 요약>\nitems:<start_col> | type:skip | value:<value[0]> | end_col:<end_col>"
      }
    }
  ]
}
모든 필드는 필수다(note 제외). value는 비어 있으면 안 된다. 다른 필드를 추가하지 마라.`

const systemPrompt = `너는 통계 조사 설문지를 분석하는 전문가다.

입력은 '스킵 로직 후보 블록'이다.
후보 블록에 포함된 모든 라인이 스킵 로직인 것은 아니다.
후보 블록에서 실제 '조건부 문항 이동(☞/⇒/로 이동/건너뛰기)'만 골라 아래 JSON 형식으로만 출력한다.

[출력 규칙]
- 출력은 JSON 객체 하나만 반환한다. 설명, 마크다운, 코드블록은 금지한다.
- 형식에 없는 필드를 추가하지 마라.
- 원문에 없는 문항 ID나 이동 로직을 만들지 마라.
- 최상위 type은 반드시 "스킵"이다.

[문항 ID 규칙]
- 문항 ID는 입력 블록에 등장한 형태 그대로 쓴다.
- "4-2"와 "문4-2"를 섞지 마라. 입력이 "4-2"면 "4-2", "문4-2"면 "문4-2"다.

[스킵 판정]
선택지에 이동 지시와 이동 대상 문항ID가 함께 적힌 경우만 스킵이다.
다음은 후보 블록에 있어도 제외한다.
1) 추가 기입, 보충 정보, 하위 항목 나열
   예: "☞ 요양시설 최초 설치년도", "☞ 전문분야(중복응답)", "☞ 전문간호사 자격 : ① 있음 ② 없음"
2) "모두 표시", "해당사항 표시", "기입"
   예: "☞ 병설 기관 유형 모두 표시"
이동으로 인정하는 형태:
- "① ... ☞ 3-2-1로 이동"
- "② ... ☞ 문5로 이동"
- "① ... ☞ 문4-3~문4-6로 이동" (범위 이동)

[필드 규칙]
- items: 항상 [start_col] 하나만.
- value: 선택지 코드와 선택지 텍스트만. 이동 문구는 넣지 않는다.
  예: "① 있음 ☞ ( ) 명 ☞ 3-1-1로 이동" → "① 있음"
- end_col: 이동 대상 문항ID만. 범위 이동이면 범위의 첫 문항만 쓰고 "~"는 쓰지 않는다.
  예: "문4-3~문4-6로 이동" → "문4-3"
- note: 두 줄. 첫 줄은 근거와 이동 대상 요약(범위면 범위 포함), 둘째 줄은
  "items:<start_col> | type:skip | value:<value[0]> | end_col:<end_col>".

[분기 누락 방지]
- 같은 start_col에 이동 지시가 여러 개면 모두 rule로 출력한다.
- "있음/없음", "예/아니오", "알고 있다/모른다" 같은 쌍은 반드시 둘 다 확인한다.

[출력 형식]
` + schemaInstructions

// SystemPrompt returns the fixed instructions sent with every extraction.
func SystemPrompt() string { return systemPrompt }
