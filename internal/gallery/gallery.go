// Package gallery holds a canonical valid example for every diagram kind.
package gallery

import "github.com/rendis/seamark/pkg/schema"

var examples = map[schema.DiagramKind]string{
	schema.KindFlowchart: `flowchart TD
    A[Start] --> B{Is it working?}
    B -->|Yes| C[Great!]
    B -->|No| D[Debug]
    D --> E[Fix issues]
    E --> B
    C --> F[Deploy]`,

	schema.KindSequence: `sequenceDiagram
    participant User
    participant Frontend
    participant Backend
    User->>Frontend: Submit form
    Frontend->>Backend: POST /api/data
    Backend-->>Frontend: 200 OK
    Frontend-->>User: Show success`,

	schema.KindClass: `classDiagram
    class User {
        -String id
        +String name
        +login(password)
        +logout()
    }
    class Admin {
        +manageUsers()
    }
    User <|-- Admin`,

	schema.KindState: `stateDiagram-v2
    [*] --> Idle
    Idle --> Processing : Start
    Processing --> Success : Complete
    Processing --> Error : Fail
    Success --> [*]
    Error --> Idle : Retry`,

	schema.KindER: `erDiagram
    CUSTOMER ||--o{ ORDER : places
    ORDER ||--|{ LINE_ITEM : contains
    CUSTOMER {
        string id PK
        string name
    }
    ORDER {
        string id PK
        date orderDate
    }`,

	schema.KindGantt: `gantt
    title Project Schedule
    dateFormat YYYY-MM-DD
    section Planning
    Requirements :done, req, 2024-01-01, 7d
    Design :active, design, after req, 10d
    section Development
    Backend :backend, 2024-01-20, 20d`,

	schema.KindPie: `pie title Browser Usage
    "Chrome" : 65
    "Firefox" : 20
    "Safari" : 10
    "Edge" : 5`,

	schema.KindMindmap: `mindmap
  root((Product))
    Features
      Generation
      Preview
    Benefits
      Fast
      Reliable`,

	schema.KindJourney: `journey
    title My working day
    section Go to work
      Make tea: 5: Me
      Do work: 3: Me
    section Go home
      Sit down: 5: Me`,

	schema.KindTimeline: `timeline
    title History of the project
    2022 : Prototype
    2023 : First release
    2024 : Plugin system`,
}

// Example returns the canonical snippet for a kind. The second return is
// false for unknown or unlisted kinds.
func Example(kind schema.DiagramKind) (string, bool) {
	code, ok := examples[kind]
	return code, ok
}

// All returns every example keyed by kind.
func All() map[schema.DiagramKind]string {
	out := make(map[schema.DiagramKind]string, len(examples))
	for k, v := range examples {
		out[k] = v
	}
	return out
}
