// Package http implements the read-only HTTP surface over the entity tables.
// Handlers stay thin: they parse the request, call a service from
// pipeledger/internal/services and render the result as JSON.
//
// # Routes
//
//	GET /healthz                               liveness and storage checks
//	GET /api/entities                          table summaries
//	GET /api/entities/{entity}                 one table summary
//	GET /api/entities/{entity}/rows            rows, ?from=&to=&synthetic=false
//	GET /api/entities/{entity}/freshness       per-cycle freshness records
//	GET /api/spreads/difference                ?a=&b=&column=[&column_b=&key=monthday&from=&to=]
//	GET /api/spreads/average                   ?entity=&column=&years=2023,2024
//	GET /api/spreads/transit                   ?origin=&destination=&on=
//	GET /api/contracts/{code}                  ?year=
//	GET /api/calendar/deadline                 ?cycle_start=&lead=
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details and are produced by
// errors.ErrorHandler, which maps the application error taxonomy onto status
// codes:
//
//	{
//	    "type": "/errors/not-found",
//	    "title": "Entity Not Found",
//	    "status": 404,
//	    "detail": "[MISSING_ENTITY] entity \"jet\" not initialized",
//	    "instance": "/api/entities/jet/rows"
//	}
//
// # Testing
//
// Handlers are tested with httptest against real services backed by a
// temporary ledger directory.
package http
