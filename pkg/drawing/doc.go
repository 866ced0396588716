// Package drawing is the persisted form of a duct layout.
//
// A [Drawing] holds the terminals, the built segments and the parameters
// they were built with, all in grid-index coordinates. Grid indices, flows
// and rounded cross-sections round-trip exactly through [Write] and [Read]:
//
//	{
//	  "id": "5f0c3c1e-...",
//	  "name": "level 2 supply",
//	  "version": 1,
//	  "cell_size_m": 0.5,
//	  "strategy": "spine",
//	  "params": {"pressure_drop": 0.1, "aspect_ratio": 2, "step": 50},
//	  "terminals": [
//	    {"pos": {"x": 0, "y": 0}, "kind": "inlet", "flow": 1000},
//	    {"pos": {"x": 4, "y": 3}, "kind": "outlet", "flow": 1000}
//	  ],
//	  "segments": [
//	    {"a": {"x": 0, "y": 0}, "b": {"x": 4, "y": 0}, "orientation": "horizontal",
//	     "flow": 1000, "width_mm": 400, "height_mm": 200, "diameter_mm": 300,
//	     "label": "400x200 (Ø300)"}
//	  ]
//	}
//
// Use [Load] and [Save] for files, [Read] and [Write] for any stream. The
// same struct carries bson tags so document stores can persist it as is.
package drawing
