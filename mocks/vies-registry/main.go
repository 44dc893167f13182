// Mock VIES VAT registry for local development. Speaks just enough of
// the checkVat SOAP contract for the engine's client: numbers ending in
// an even digit validate, "000000000" simulates MS_UNAVAILABLE.
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
)

type checkVatRequest struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		CheckVat struct {
			CountryCode string `xml:"countryCode"`
			VATNumber   string `xml:"vatNumber"`
		} `xml:"checkVat"`
	} `xml:"Body"`
}

const responseTemplate = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <checkVatResponse>
      <countryCode>%s</countryCode>
      <vatNumber>%s</vatNumber>
      <valid>%t</valid>
      <name>%s</name>
    </checkVatResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const faultTemplate = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <soapenv:Fault>
      <faultcode>soapenv:Server</faultcode>
      <faultstring>%s</faultstring>
    </soapenv:Fault>
  </soapenv:Body>
</soapenv:Envelope>`

func handleCheckVat(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	var req checkVatRequest
	if err := xml.Unmarshal(raw, &req); err != nil {
		http.Error(w, "malformed envelope", http.StatusBadRequest)
		return
	}

	country := req.Body.CheckVat.CountryCode
	number := req.Body.CheckVat.VATNumber
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")

	if number == "000000000" {
		fmt.Fprintf(w, faultTemplate, "MS_UNAVAILABLE")
		return
	}

	valid := validNumber(number)
	name := ""
	if valid {
		name = fmt.Sprintf("Test Company %s", country)
	}
	fmt.Fprintf(w, responseTemplate, country, number, valid, name)
}

// validNumber accepts digit-bearing numbers whose last digit is even.
func validNumber(number string) bool {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return false
	}
	last := trimmed[len(trimmed)-1]
	return last >= '0' && last <= '9' && (last-'0')%2 == 0
}

func main() {
	addr := ":9102"
	if v := os.Getenv("ADDR"); v != "" {
		addr = v
	}

	log.Printf("mock vies registry listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, http.HandlerFunc(handleCheckVat)))
}
