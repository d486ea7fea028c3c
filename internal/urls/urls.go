package urls

// Documentation URLs for the router interfaces this tool talks to.
// All URLs point to AVM's interface documentation.

// Interfaces is AVM's overview of the FRITZ!Box developer interfaces.
const Interfaces = "https://avm.de/service/schnittstellen/"

// TR064FirstSteps explains how to enable and authenticate against TR-064.
const TR064FirstSteps = "https://avm.de/fileadmin/user_upload/Global/Service/Schnittstellen/AVM_TR-064_first_steps.pdf"

// HomeplugService documents the X_AVM-DE_Homeplug service actions
// (GetGenericDeviceEntry, GetSpecificDeviceEntry, DeviceDoUpdate).
const HomeplugService = "https://avm.de/fileadmin/user_upload/Global/Service/Schnittstellen/x_homeplugSCPD.pdf"
