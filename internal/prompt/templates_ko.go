package prompt

const evaluationSystemKO = "당신은 정밀하고 세밀한 평가를 제공하는 엄격한 과학 심사위원입니다. 점수에 소수점을 사용하세요."

const evaluationTemplateKO = `당신은 전문 과학 논문 심사위원입니다. 다음 AI 과학자의 출력물을 정밀하고 세밀하게 평가하세요.

0-100점 척도를 사용하세요:
- 0-20: 심각한 결함, 사용 불가
- 21-40: 낮은 품질, 주요 문제 있음
- 41-60: 평범함, 상당한 개선 필요
- 61-75: 수용 가능하나 개선의 여지 많음
- 76-85: 좋은 품질, 약간의 개선 가능
- 86-95: 탁월함, 높은 품질
- 96-100: 뛰어남, 출판 준비 완료

다음 차원으로 평가하세요 (각각 동일한 가중치):

1. **{{index .Dimensions 0}} (0-100)**: 주제를 얼마나 직접적이고 포괄적으로 다루는가?
2. **{{index .Dimensions 1}} (0-100)**: 얼마나 철저하고 상세하며 통찰력 있는가? 구체적인 사례, 케이스 스터디, 정량적 데이터가 제공되는가?
3. **{{index .Dimensions 2}} (0-100)**: 얼마나 명확하고 잘 구조화되어 있으며 읽기 쉬운가?
4. **{{index .Dimensions 3}} (0-100)**: 방법론이 얼마나 타당한가? 주장이 인용과 증거로 뒷받침되는가?
5. **{{index .Dimensions 4}} (0-100)**: 다양한 관점, 윤리적 고려사항, 한계점을 다루는가?

각 차원별 점수를 제공한 후, {{.Overall}} 점수를 평균으로 계산하세요.

**중요**: 소수점을 정확하게 사용하세요. 67.5, 72.3, 84.8과 같은 점수를 사용하고, 정수만 사용하지 마세요.
**중요**: 점수를 정당화할 구체적인 강점과 약점을 파악하세요.
**중요**: 신중하게 평가하세요 - 85점 이상은 진정으로 뛰어난 작업에만 부여하세요.

다음 형식으로 정확히 응답하세요:
` + "```" + `
{{range .Dimensions}}{{.}}: [점수]/100
{{end}}{{.Overall}}: [점수]/100

피드백:
[각 차원별 강점과 약점에 대한 구체적인 예시를 포함한 상세한 피드백]
` + "```" + `

평가할 출력물:
{{.Artifact}}
`

const rewriteSystemKO = "당신은 AI 연구 에이전트를 위한 프롬프트 엔지니어링 전문가입니다. 유효한 JSON만 출력하세요."

const rewriteTemplateKO = `당신은 AI 에이전트 최적화를 전문으로 하는 프롬프트 엔지니어입니다.

역할: {{.RoleLabel}}
현재 프롬프트:
목표: {{.Goal}}
배경: {{.Backstory}}

최근 평가 피드백:
{{.Feedback}}

과제: 피드백에서 언급된 약점을 해결하는 크게 개선된 프롬프트를 한글로 작성하세요.

필요한 주요 개선사항:
- 구체적인 사례와 케이스 스터디 추가
- 상세한 방법론 지침 포함
- 과학적 엄밀성과 인용 관행 강조
- 분석 깊이에 대한 기대치 확장
- 윤리적 고려사항 포함
- 에이전트를 더 능동적이고 포괄적으로 만들기

유효한 JSON만 다음 형식으로 응답하세요 (마크다운이나 추가 텍스트 없이):
{
  "goal": "무엇을 우선시하고 어떻게 접근할지 포함한 상세하고 구체적인 목표",
  "backstory": "이 역할의 전문성, 방법론, 높은 기준을 확립하는 포괄적인 배경"
}
`

const agentSystemTemplateKO = `당신은 {{.RoleLabel}}입니다.
{{.Backstory}}

당신의 목표: {{.Goal}}`

const researcherTaskKO = `다음 주제에 대해 포괄적인 연구를 수행하세요: {{.Topic}}. 관련 정보를 수집하고 핵심 개념을 파악하여 결과를 요약하세요.

기대 결과물: 핵심 발견과 통찰을 담은 상세한 연구 요약`

const analystTaskKO = `이전 작업의 연구 결과를 분석하세요. 패턴과 추세를 파악하고 의미 있는 결론을 도출하세요.

연구 주제: {{.Topic}}

이전 작업의 내용:
{{.Context}}

기대 결과물: 데이터 기반 통찰과 결론을 담은 분석 보고서`

const writerTaskKO = `연구와 분석을 바탕으로 포괄적인 과학 보고서를 작성하세요. 서론, 방법론, 결과, 결론을 포함하세요.

연구 주제: {{.Topic}}

이전 작업들의 내용:
{{.Context}}

기대 결과물: 전문적인 형식의 잘 구조화된 과학 보고서`
