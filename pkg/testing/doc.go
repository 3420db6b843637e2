// Package testing provides a test fixture that stubs remote HTTP APIs from
// their Swagger/OpenAPI contracts.
//
// # Basic Usage
//
// Register one or more (contract, base URL) pairs. Every GET, POST, PUT, PATCH
// and DELETE under those base URLs is answered locally for the rest of the
// test, including requests sent through http.DefaultClient:
//
//	func TestPetClient(t *testing.T) {
//	    stub := swaggerstub.New(t, swaggerstub.Target{
//	        Contract: "testdata/petstore.yaml",
//	        BaseURL:  "http://petstore.test",
//	    })
//
//	    pet, err := petclient.Get(context.Background(), "http://petstore.test", 5121)
//	    // pet is the example Pet generated from the contract
//
//	    stub.AssertCalled(t, "GET", "/v2/pets/{petId}")
//	}
//
// Valid requests get the example response with the smallest status code,
// invalid ones a 400, and undefined operations a 404 (or 400 for POST).
//
// # Mocks
//
// A mock fixes the response of one (method, path) for as many calls as are
// made, and wins over everything the contract says:
//
//	stub.Mock("GET", "/v2/pets/1").
//	    WithStatus(404).
//	    WithJSON(map[string]string{"message": "gone"}).
//	    Reply()
//
// # Side Effects
//
// A side effect scripts a sequence of responses, one per call. Calling past
// the end of the sequence fails the test:
//
//	stub.SideEffect("GET", "/v2/pets/1").
//	    ThenStatus(map[string]string{"message": "busy"}, 503).
//	    Then(pet).
//	    Reply()
//
// Fail makes every call return a transport error instead:
//
//	stub.SideEffect("DELETE", "/v2/pets/1").Fail(io.ErrUnexpectedEOF)
//
// # Multiple Base URLs
//
// Mocks, side effects and call history are kept per scheme and host. The
// Stub's own methods act on the first target; use At for the others:
//
//	stub.At("http://inventory.test").Mock("GET", "/api/items").WithJSON(items).Reply()
package testing
