// SPDX-License-Identifier: MPL-2.0

package document

import "encoding/xml"

// Namespaces fixed by the submission format.
const (
	NamespaceHL7           = "urn:hl7-org:v3"
	NamespaceMHLW          = "https://www.mhlw.go.jp/stf/seisakunitsuite/bunya/0000161103.html"
	NamespaceMHLWDatatype  = "urn:MHLW:share:datatype:2021"
	NamespaceGuidanceClaim = "urn:MHLW:guidance:claim:GC:2021"
	NamespaceXSI           = "http://www.w3.org/2001/XMLSchema-instance"
)

// Shared attribute shapes of the MHLW datatype vocabulary.
type (
	// ii is an instance identifier (II).
	ii struct {
		Root      string `xml:"root,attr,omitempty"`
		Extension string `xml:"extension,attr,omitempty"`
	}

	// cd is a coded value (CD).
	cd struct {
		Code        string `xml:"code,attr,omitempty"`
		CodeSystem  string `xml:"codeSystem,attr,omitempty"`
		DisplayName string `xml:"displayName,attr,omitempty"`
	}

	// valueAttr is a bare value-carrying element (INT, TS and friends).
	valueAttr struct {
		Value string `xml:"value,attr"`
	}

	// codeAttr is a bare code-carrying element.
	codeAttr struct {
		Code string `xml:"code,attr"`
	}

	// mo is a monetary amount (MO) with its currency.
	mo struct {
		Value    string `xml:"value,attr"`
		Currency string `xml:"currency,attr,omitempty"`
	}

	// idWrap wraps a single id child element.
	idWrap struct {
		ID *ii `xml:"id,omitempty"`
	}

	// idWrapDT is idWrap in the shared datatype namespace.
	idWrapDT struct {
		ID *ii `xml:"dt:id,omitempty"`
	}
)

// indexDoc is the archive-level index document (ix08).
type indexDoc struct {
	XMLName        xml.Name `xml:"index"`
	Xmlns          string   `xml:"xmlns,attr"`
	XmlnsXSI       string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`

	InteractionType  codeAttr  `xml:"interactionType"`
	CreationTime     valueAttr `xml:"creationTime"`
	Sender           idWrap    `xml:"sender"`
	Receiver         idWrap    `xml:"receiver"`
	ServiceEventType codeAttr  `xml:"serviceEventType"`
	TotalRecordCount valueAttr `xml:"totalRecordCount"`
}

// summaryDoc is the archive-level summary document (su08).
type summaryDoc struct {
	XMLName        xml.Name `xml:"summary"`
	Xmlns          string   `xml:"xmlns,attr"`
	XmlnsXSI       string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`

	ServiceEventType           *codeAttr  `xml:"serviceEventType,omitempty"`
	TotalSubjectCount          *valueAttr `xml:"totalSubjectCount,omitempty"`
	TotalCostAmount            *mo        `xml:"totalCostAmount,omitempty"`
	TotalPaymentAmount         *mo        `xml:"totalPaymentAmount,omitempty"`
	TotalClaimAmount           *mo        `xml:"totalClaimAmount,omitempty"`
	TotalPaymentByOtherProgram *mo        `xml:"totalPaymentByOtherProgram,omitempty"`
}

// clinicalDocument is the shared CDA shape of hc08 and hg08.
type clinicalDocument struct {
	XMLName        xml.Name `xml:"ClinicalDocument"`
	Xmlns          string   `xml:"xmlns,attr"`
	XmlnsXSI       string   `xml:"xmlns:xsi,attr"`
	XmlnsDT        string   `xml:"xmlns:dt,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`

	TypeID              *ii          `xml:"typeId,omitempty"`
	ID                  *ii          `xml:"id,omitempty"`
	Code                *cd          `xml:"code,omitempty"`
	Title               string       `xml:"title"`
	EffectiveTime       valueAttr    `xml:"effectiveTime"`
	ConfidentialityCode *cd          `xml:"confidentialityCode,omitempty"`
	LanguageCode        codeAttr     `xml:"languageCode"`
	RecordTarget        recordTarget `xml:"recordTarget"`
	Author              author       `xml:"author"`
	Custodian           custodian    `xml:"custodian"`
	// DocumentationOf is present on hg08 documents only.
	DocumentationOf *documentationOf `xml:"documentationOf,omitempty"`
	Component       bodyComponent    `xml:"component"`
}

type recordTarget struct {
	PatientRole patientRole `xml:"patientRole"`
}

type patientRole struct {
	// The MRN identifier comes first; an insurance number id follows when
	// declared.
	IDs     []ii    `xml:"id"`
	Patient patient `xml:"patient"`
}

type patient struct {
	Name                     patientName `xml:"name"`
	AdministrativeGenderCode *cd         `xml:"administrativeGenderCode,omitempty"`
	BirthTime                valueAttr   `xml:"birthTime"`
}

// patientName carries family and given in the record namespace.
type patientName struct {
	Family string `xml:"dt:family"`
	Given  string `xml:"dt:given"`
}

type author struct {
	AssignedAuthor idWrap `xml:"assignedAuthor"`
}

type custodian struct {
	AssignedCustodian assignedCustodian `xml:"assignedCustodian"`
}

type assignedCustodian struct {
	RepresentedCustodianOrganization idWrap `xml:"representedCustodianOrganization"`
}

type documentationOf struct {
	ServiceEvent serviceEvent `xml:"serviceEvent"`
}

type serviceEvent struct {
	EffectiveTime serviceEventTime `xml:"effectiveTime"`
}

// serviceEventTime is either a single value or a low/high interval in the
// record namespace.
type serviceEventTime struct {
	Value string     `xml:"value,attr,omitempty"`
	Low   *valueAttr `xml:"dt:low,omitempty"`
	High  *valueAttr `xml:"dt:high,omitempty"`
}

type bodyComponent struct {
	TypeCode       string         `xml:"typeCode,attr"`
	StructuredBody structuredBody `xml:"structuredBody"`
}

type structuredBody struct {
	Component sectionComponent `xml:"component"`
}

type sectionComponent struct {
	Section section `xml:"section"`
}

type section struct {
	Code    *cd     `xml:"code,omitempty"`
	Title   string  `xml:"title"`
	Text    string  `xml:"text,omitempty"`
	Entries []entry `xml:"entry"`
}

type entry struct {
	TypeCode    string      `xml:"typeCode,attr"`
	Observation observation `xml:"observation"`
}

type observation struct {
	ClassCode string    `xml:"classCode,attr"`
	MoodCode  string    `xml:"moodCode,attr"`
	Code      *cd       `xml:"code,omitempty"`
	Value     *obsValue `xml:"value,omitempty"`
}

// obsValue is the observed value, typed through xsi:type as dt:PQ, dt:CD
// or dt:INT.
type obsValue struct {
	XSIType     string `xml:"xsi:type,attr"`
	Value       string `xml:"value,attr,omitempty"`
	Unit        string `xml:"unit,attr,omitempty"`
	Code        string `xml:"code,attr,omitempty"`
	CodeSystem  string `xml:"codeSystem,attr,omitempty"`
	DisplayName string `xml:"displayName,attr,omitempty"`
}

// checkupClaim is the checkup settlement document (cc08).
type checkupClaim struct {
	XMLName        xml.Name `xml:"checkupClaim"`
	Xmlns          string   `xml:"xmlns,attr"`
	XmlnsXSI       string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`
	DocID          string   `xml:"docId,attr"`

	Encounter     string            `xml:"encounter"`
	SubjectPerson subjectPerson     `xml:"subjectPerson"`
	CheckupCard   *checkupCard      `xml:"checkupCard,omitempty"`
	Settlement    checkupSettlement `xml:"settlement"`
}

type subjectPerson struct {
	PatientID    *ii `xml:"patientId,omitempty"`
	CheckupOrgID *ii `xml:"checkupOrgId,omitempty"`
	InsurerID    *ii `xml:"insurerId,omitempty"`
}

type checkupCard struct {
	CopaymentType *cd `xml:"copaymentType,omitempty"`
}

// checkupSettlement amounts carry no currency attribute; the cc08 schema
// fixes the currency.
type checkupSettlement struct {
	ClaimType       *cd        `xml:"claimType,omitempty"`
	CommissionType  *cd        `xml:"commissionType,omitempty"`
	TotalPoints     *valueAttr `xml:"totalPoints,omitempty"`
	TotalCost       *valueAttr `xml:"totalCost,omitempty"`
	CopaymentAmount *valueAttr `xml:"copaymentAmount,omitempty"`
	ClaimAmount     *valueAttr `xml:"claimAmount,omitempty"`
}

// guidanceClaim is the guidance settlement document (gc08).
type guidanceClaim struct {
	XMLName        xml.Name `xml:"GuidanceClaimDocument"`
	Xmlns          string   `xml:"xmlns,attr"`
	XmlnsXSI       string   `xml:"xmlns:xsi,attr"`
	XmlnsDT        string   `xml:"xmlns:dt,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`

	DocumentID        *ii               `xml:"documentId,omitempty"`
	CreationTime      valueAttr         `xml:"creationTime"`
	AuthorInstitution idWrapDT          `xml:"authorInstitution"`
	Patient           idWrap            `xml:"patient"`
	HealthInsurance   healthInsurance   `xml:"healthInsurance"`
	Encounter         guidanceEncounter `xml:"encounter"`
	Card              guidanceCard      `xml:"healthGuidanceCard"`
	SettlementDetails settlementDetails `xml:"settlementDetails"`
}

type healthInsurance struct {
	Insurer idWrapDT `xml:"insurer"`
}

type guidanceEncounter struct {
	GuidanceOrg   idWrapDT `xml:"guidanceOrg"`
	GuidanceLevel *cd      `xml:"guidanceLevel,omitempty"`
	Timing        *cd      `xml:"timing,omitempty"`
}

type guidanceCard struct {
	CopaymentType   *cd        `xml:"copaymentType,omitempty"`
	PointsCompleted valueAttr  `xml:"pointsCompleted"`
	PointsIntended  *valueAttr `xml:"pointsIntended,omitempty"`
}

type settlementDetails struct {
	TotalCost       *mo `xml:"totalCost,omitempty"`
	CopaymentAmount *mo `xml:"copaymentAmount,omitempty"`
	ClaimAmount     *mo `xml:"claimAmount,omitempty"`
}
